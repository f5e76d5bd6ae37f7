package domain

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day. Streak policy is defined over
// calendar dates resolved in the habit owner's timezone, so completions and
// day gaps are computed here rather than on raw instants.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in the given location.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in ISO form (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t, time.UTC), nil
}

// Time returns midnight of the date in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of week (Sunday=0).
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// AddDays returns the date n calendar days after d. Negative n goes back.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n), time.UTC)
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(o Date) bool {
	return d == o
}

// Before reports whether d falls before o.
func (d Date) Before(o Date) bool {
	return d.Time(time.UTC).Before(o.Time(time.UTC))
}

// String returns the ISO form of the date.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DaysBetween returns the number of calendar days from a to b (b - a).
// Dates are anchored in UTC so the result never shifts across DST changes.
func DaysBetween(a, b Date) int {
	return int(b.Time(time.UTC).Sub(a.Time(time.UTC)) / (24 * time.Hour))
}

// StartOfISOWeek returns the Monday of the ISO week containing d.
// Two dates share an ISO week iff their week starts are equal, and weeks are
// adjacent iff the starts are exactly seven days apart.
func (d Date) StartOfISOWeek() Date {
	// time.Weekday puts Sunday at 0; ISO weeks start on Monday.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}
