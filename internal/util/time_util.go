package util

import (
	"time"
)

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ToDate drops the clock component, keeping the calendar date of t in UTC.
func ToDate(t time.Time) time.Time {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// LookbackWindow returns [end - years, end).
func LookbackWindow(end time.Time, years int) (time.Time, time.Time) {
	end = ToDate(end)
	return end.AddDate(-years, 0, 0), end
}

// TrailingDays returns [end - days, end).
func TrailingDays(end time.Time, days int) (time.Time, time.Time) {
	end = ToDate(end)
	return end.AddDate(0, 0, -days), end
}
