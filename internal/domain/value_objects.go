package domain

import (
	"fmt"
	"strings"
	"time"
)

// Name is a validated habit name (1-120 characters).
type Name struct {
	value string
}

// NewName creates a Name, validating the input.
func NewName(s string) (Name, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Name{}, ErrNameRequired
	}

	if len(s) > 120 {
		return Name{}, ErrNameTooLong
	}

	return Name{value: s}, nil
}

// String returns the name value.
func (n Name) String() string {
	return n.value
}

// ReminderTime is a validated time-of-day (HH:MM, 24-hour) at which a habit's
// reminder fires. It carries no date and no timezone; occurrences are
// projected onto concrete dates in the owner's location.
type ReminderTime struct {
	hour   int
	minute int
}

// ParseReminderTime parses "HH:MM" in 24-hour form.
func ParseReminderTime(s string) (ReminderTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ReminderTime{}, fmt.Errorf("%w: %q", ErrInvalidReminderTime, s)
	}
	return ReminderTime{hour: t.Hour(), minute: t.Minute()}, nil
}

// At returns the instant the reminder fires on the given date in loc.
func (r ReminderTime) At(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, r.hour, r.minute, 0, 0, loc)
}

// String returns the HH:MM form.
func (r ReminderTime) String() string {
	return fmt.Sprintf("%02d:%02d", r.hour, r.minute)
}
