package util

import "fmt"

// TruncateStringMiddle truncates a string by replacing characters in the middle with
// "..." if needed.
func TruncateStringMiddle(input string, maxLen int, suffixLen int) (string, int) {
	if len(input)-3 <= maxLen {
		return input, 0
	}

	suffix := input[len(input)-suffixLen:]
	prefix := input[:maxLen-suffixLen-3]

	numOmitted := len(input) - len(prefix) - len(suffix)
	return fmt.Sprintf("%s...%s", prefix, suffix), numOmitted
}

// PrettyBytes returns a human-formatted size using binary units, e.g. "1.5 GiB".
func PrettyBytes(bytes int64) string {
	const unit = 1024

	if bytes < unit && bytes > -unit {
		return fmt.Sprintf("%d B", bytes)
	}

	value := float64(bytes)
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}

	var s int
	for value /= unit; (value >= unit || value <= -unit) && s < len(suffixes)-1; s++ {
		value /= unit
	}

	return fmt.Sprintf("%.1f %s", value, suffixes[s])
}
