package models

import (
	"fmt"
	"regexp"
	"time"
)

// PeriodLayout is the time layout of an accounting period (YYYY-MM).
const PeriodLayout = "2006-01"

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsPeriod reports whether s is a well-formed accounting period.
func IsPeriod(s string) bool {
	return periodPattern.MatchString(s)
}

// PeriodStart returns midnight UTC of the first day of period.
func PeriodStart(period string) (time.Time, error) {
	if !IsPeriod(period) {
		return time.Time{}, fmt.Errorf("malformed period %q, want YYYY-MM", period)
	}
	return time.ParseInLocation(PeriodLayout, period, time.UTC)
}

// PeriodOf returns the accounting period containing t, in t's own location.
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}

// CalendarDate truncates t to its calendar date, expressed at midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	diff := CalendarDate(a).Sub(CalendarDate(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
