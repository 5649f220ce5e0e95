package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrettyDuration(t *testing.T) {
	testCases := map[time.Duration]string{
		0:                       "0µs",
		250 * time.Microsecond:  "250µs",
		3400 * time.Microsecond: "3ms",
		999 * time.Millisecond:  "999ms",
		3 * time.Second:         "3s",
		239 * time.Second:       "239s",
		4 * time.Minute:         "4m",
		119 * time.Minute:       "119m",
		26 * time.Hour:          "26h",
	}

	for duration, expected := range testCases {
		assert.Equal(t, expected, PrettyDuration(duration), duration.String())
	}
}

func TestPrettyRate(t *testing.T) {
	type testCase struct {
		evaluations int64
		elapsed     time.Duration
		expected    string
	}

	testCases := []testCase{
		{evaluations: 120000, elapsed: 3 * time.Second, expected: "40000/sec"},
		{evaluations: 5, elapsed: 2 * time.Second, expected: "2.5/sec"},
		{evaluations: 30, elapsed: time.Minute, expected: "30/min"},
		{evaluations: 3, elapsed: 2 * time.Minute, expected: "1.5/min"},
		{evaluations: 1, elapsed: 2 * time.Hour, expected: "0.5/hour"},
		{evaluations: 1, elapsed: 24 * time.Hour, expected: "~0"},
		{evaluations: 0, elapsed: time.Second, expected: "0"},
		{evaluations: 10, elapsed: 0, expected: ""},
	}

	for _, testCase := range testCases {
		assert.Equal(
			t,
			testCase.expected,
			PrettyRate(testCase.evaluations, testCase.elapsed),
			"%d in %s",
			testCase.evaluations,
			testCase.elapsed,
		)
	}
}
