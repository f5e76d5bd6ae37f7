package domain

import (
	"fmt"
	"strings"
	"time"
)

// FrequencyKind identifies the recurrence policy of a habit.
type FrequencyKind string

const (
	FrequencyDaily  FrequencyKind = "daily"
	FrequencyWeekly FrequencyKind = "weekly"
	FrequencyCustom FrequencyKind = "custom"
)

// Frequency is a closed recurrence variant: daily, weekly, or a custom set of
// weekdays. Values are only constructed through NewFrequency, so a held
// Frequency is always well-formed (custom implies a non-empty weekday set,
// daily/weekly carry none).
type Frequency struct {
	kind     FrequencyKind
	weekdays uint8 // bit i set = time.Weekday(i) scheduled; zero unless custom
}

// NewFrequency validates a (kind, weekdays) pair and returns the frequency
// variant. Daily and weekly must not carry weekdays; custom requires a
// non-empty subset of 0..6 (Sunday=0). Duplicates are rejected.
func NewFrequency(kind string, weekdays []int) (Frequency, error) {
	k := FrequencyKind(strings.ToLower(kind))

	switch k {
	case FrequencyDaily, FrequencyWeekly:
		if len(weekdays) > 0 {
			return Frequency{}, fmt.Errorf("%w: %s frequency must not carry weekdays", ErrInvalidSchedule, k)
		}
		return Frequency{kind: k}, nil

	case FrequencyCustom:
		if len(weekdays) == 0 {
			return Frequency{}, fmt.Errorf("%w: custom frequency requires at least one weekday", ErrInvalidSchedule)
		}
		var mask uint8
		for _, d := range weekdays {
			if d < 0 || d > 6 {
				return Frequency{}, fmt.Errorf("%w: weekday %d out of range 0..6", ErrInvalidSchedule, d)
			}
			bit := uint8(1) << uint(d)
			if mask&bit != 0 {
				return Frequency{}, fmt.Errorf("%w: duplicate weekday %d", ErrInvalidSchedule, d)
			}
			mask |= bit
		}
		return Frequency{kind: k, weekdays: mask}, nil

	default:
		return Frequency{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, kind)
	}
}

// Kind returns the recurrence kind.
func (f Frequency) Kind() FrequencyKind {
	return f.kind
}

// Weekdays returns the scheduled weekdays in ascending order.
// Empty for daily and weekly frequencies.
func (f Frequency) Weekdays() []int {
	if f.kind != FrequencyCustom {
		return nil
	}
	days := make([]int, 0, 7)
	for d := 0; d < 7; d++ {
		if f.weekdays&(1<<uint(d)) != 0 {
			days = append(days, d)
		}
	}
	return days
}

// ScheduledOn reports whether the given weekday is covered by the frequency.
// Daily and weekly habits accept any weekday; custom habits only their set.
func (f Frequency) ScheduledOn(w time.Weekday) bool {
	if f.kind != FrequencyCustom {
		return true
	}
	return f.weekdays&(1<<uint(w)) != 0
}

// String returns the kind name, used for persistence and wire encoding.
func (f Frequency) String() string {
	return string(f.kind)
}
