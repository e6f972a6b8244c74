package model

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange is a half-open stay interval [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Overlaps is true when the two ranges share at least one night. A stay
// checking in on the day another checks out does not overlap it.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

func (r DateRange) Nights() int {
	return Nights(r.CheckIn, r.CheckOut)
}

// ParseCalendarDate accepts YYYY-MM-DD or RFC3339 and returns midnight UTC of
// the calendar date as written.
func ParseCalendarDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return StartOfDay(t), nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// Nights is the calendar-day difference between the two dates. It counts in
// Unix seconds because time.Duration overflows past about 292 years.
func Nights(checkIn, checkOut time.Time) int {
	return int((StartOfDay(checkOut).Unix() - StartOfDay(checkIn).Unix()) / secondsPerDay)
}

// Overlaps reports whether two stays share a night.
func Overlaps(a, b DateRange) bool {
	return a.Overlaps(b)
}
