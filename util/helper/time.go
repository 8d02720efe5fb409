package helper_util

import (
	"fmt"
	"time"
)

// Helper function to parse time
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err
}

// ParseTimeRange parses optional RFC3339 bounds. A missing "to" defaults
// to now and a missing "from" to window before "to".
func ParseTimeRange(from, to string, window time.Duration, now time.Time) (time.Time, time.Time, error) {
	end := now
	if to != "" {
		t, err := ParseTime(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to': %w", err)
		}
		end = t
	}
	start := end.Add(-window)
	if from != "" {
		t, err := ParseTime(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from': %w", err)
		}
		start = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("'from' is after 'to'")
	}
	return start, end, nil
}
