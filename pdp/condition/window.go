package condition

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// ValidateWindow reports malformed days or clock values.
func ValidateWindow(w model.TimeWindow) error {
	for _, d := range w.Days {
		if _, ok := weekdays[strings.ToLower(d)]; !ok {
			return fmt.Errorf("invalid day %q", d)
		}
	}
	if (w.Start == "") != (w.End == "") {
		return fmt.Errorf("window needs both start and end")
	}
	if w.Start == "" {
		return nil
	}
	if _, err := ParseClock(w.Start); err != nil {
		return err
	}
	_, err := ParseClock(w.End)
	return err
}

// InWindow reports whether t falls inside w. End is exclusive and a window
// whose end precedes its start wraps past midnight. Days are matched
// against the day the window opened.
func InWindow(w model.TimeWindow, t time.Time) (bool, error) {
	if err := ValidateWindow(w); err != nil {
		return false, err
	}
	if w.Start == "" {
		return dayAllowed(w.Days, t.Weekday()), nil
	}

	start, _ := ParseClock(w.Start)
	end, _ := ParseClock(w.End)
	now := t.Hour()*60 + t.Minute()

	switch {
	case start == end:
		return dayAllowed(w.Days, t.Weekday()), nil
	case start < end:
		return now >= start && now < end && dayAllowed(w.Days, t.Weekday()), nil
	case now >= start:
		return dayAllowed(w.Days, t.Weekday()), nil
	case now < end:
		return dayAllowed(w.Days, t.AddDate(0, 0, -1).Weekday()), nil
	default:
		return false, nil
	}
}

func dayAllowed(days []string, wd time.Weekday) bool {
	if len(days) == 0 {
		return true
	}
	for _, d := range days {
		if weekdays[strings.ToLower(d)] == wd {
			return true
		}
	}
	return false
}
