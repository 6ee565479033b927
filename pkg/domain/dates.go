package domain

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar-day format used for attendance and payroll dates.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format used for clock-in/out values.
const ClockLayout = "15:04"

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ValidDate reports whether s is a well-formed calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// HoursBetween returns the worked hours between two HH:MM clock values,
// rounded to two decimals. A clock-out before the clock-in wraps past
// midnight. Missing or malformed values yield zero.
func HoursBetween(clockIn, clockOut string) float64 {
	if clockIn == "" || clockOut == "" {
		return 0
	}
	in, err := time.Parse(ClockLayout, clockIn)
	if err != nil {
		return 0
	}
	out, err := time.Parse(ClockLayout, clockOut)
	if err != nil {
		return 0
	}
	d := out.Sub(in)
	if d < 0 {
		d += 24 * time.Hour
	}
	return Round2(d.Hours())
}

// Round2 rounds to two decimal places (cents, hundredths of an hour).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
