// Package timeutil provides the clock and calendar primitives shared by the
// booking engine: minute-of-day arithmetic over "HH:MM" strings, canonical
// "YYYY-MM-DD" date keys, and lowercase English weekday names used for
// recurrence matching.
package timeutil

import (
	"fmt"
	"time"
)

const (
	// ClockLayout is the zero-padded 24-hour wall clock format carried by
	// meeting-room time slots.
	ClockLayout = "15:04"
	// DateLayout is the canonical calendar date format used for exact-date
	// booking comparison.
	DateLayout = "2006-01-02"
)

// ParseClock converts a zero-padded "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	// time.Parse accepts single-digit hours; the wire contract does not.
	if len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("timeutil: invalid clock value %q: want HH:MM", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid clock value %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as a zero-padded "HH:MM" string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a canonical "YYYY-MM-DD" string into a calendar date.
// The result carries UTC midnight; only the date components are meaningful.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: invalid date value %q: %w", s, err)
	}
	return t, nil
}

// DateKey derives the canonical "YYYY-MM-DD" key from a timestamp.
//
// The key is built from the timestamp's own calendar components rather than
// a UTC conversion, so a local time near midnight never shifts to the
// neighbouring day.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayName returns the lowercase English weekday name ("monday" ..
// "sunday") of the timestamp's calendar date.
func WeekdayName(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// IsWeekdayName reports whether s is one of the seven lowercase English
// weekday names accepted in recurrence configurations.
func IsWeekdayName(s string) bool {
	switch s {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}
