package helper_util

import (
	"time"
)

// Helper function to parse time
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err
}

// ParseSince parses an RFC3339 cutoff, defaulting to the trailing 24 hours
// when the value is empty.
func ParseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Now().Add(-24 * time.Hour), nil
	}
	return ParseTime(s)
}
