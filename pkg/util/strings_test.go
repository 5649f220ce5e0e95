package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateStringMiddle(t *testing.T) {
	resultLong, omittedLong := TruncateStringMiddle("01234567890123456789", 10, 3)
	assert.Equal(t, "0123...789", resultLong)
	assert.Equal(t, 13, omittedLong)

	resultShort, omittedShort := TruncateStringMiddle("012345", 10, 3)
	assert.Equal(t, "012345", resultShort)
	assert.Equal(t, 0, omittedShort)
}

func TestPrettyBytes(t *testing.T) {
	assert.Equal(t, "0 B", PrettyBytes(0))
	assert.Equal(t, "1023 B", PrettyBytes(1023))
	assert.Equal(t, "1.5 KiB", PrettyBytes(1536))
	assert.Equal(t, "3.0 MiB", PrettyBytes(3*1024*1024))
	assert.Equal(t, "2.0 TiB", PrettyBytes(2*1024*1024*1024*1024))
}
