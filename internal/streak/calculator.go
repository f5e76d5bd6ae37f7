// Package streak holds the pure streak and milestone calculators.
// Nothing here touches storage or the clock; callers resolve "today" in the
// owner's timezone and pass calendar dates in.
package streak

import (
	"github.com/rezkam/stride/internal/domain"
)

// ContinuationPolicy decides whether a completion on today continues the
// streak given the previous completion date. The weekly boundary rule is not
// settled product-wise, so the policy is injectable; DefaultPolicy implements
// the current behavior.
type ContinuationPolicy interface {
	// Continues reports whether a completion on today extends a streak whose
	// last completion was on last. last is never nil and never equal to today.
	Continues(freq domain.Frequency, last, today domain.Date) bool
}

// DefaultPolicy is the standard continuation rule set:
//   - daily: last is exactly the previous calendar day
//   - weekly: last falls in the immediately preceding ISO week
//   - custom: last is the most recent scheduled date strictly before today
type DefaultPolicy struct{}

func (DefaultPolicy) Continues(freq domain.Frequency, last, today domain.Date) bool {
	switch freq.Kind() {
	case domain.FrequencyDaily:
		return domain.DaysBetween(last, today) == 1

	case domain.FrequencyWeekly:
		// Adjacent ISO weeks have week starts exactly seven days apart.
		return domain.DaysBetween(last.StartOfISOWeek(), today.StartOfISOWeek()) == 7

	case domain.FrequencyCustom:
		prev, ok := previousScheduled(freq, today)
		return ok && last.Equal(prev)
	}
	return false
}

// Advance returns the new current streak after a completion on today.
// A nil last (never completed) or a broken continuation resets to 1; the
// reset is a normal outcome, not an error. The same-day case is trapped by
// the idempotence guard upstream and never reaches this function.
//
// A weekly habit completed again within an already-counted ISO week keeps
// its streak unchanged: the week contributed once and the extra completion
// neither extends nor breaks the run.
func Advance(policy ContinuationPolicy, freq domain.Frequency, currentStreak int, last *domain.Date, today domain.Date) int {
	if last == nil {
		return 1
	}
	if freq.Kind() == domain.FrequencyWeekly &&
		domain.DaysBetween(last.StartOfISOWeek(), today.StartOfISOWeek()) == 0 {
		return currentStreak
	}
	if policy.Continues(freq, *last, today) {
		return currentStreak + 1
	}
	return 1
}

// previousScheduled returns the most recent date strictly before today whose
// weekday is in the custom schedule. ok is false only for an empty set, which
// NewFrequency rules out for custom frequencies.
func previousScheduled(freq domain.Frequency, today domain.Date) (domain.Date, bool) {
	for back := 1; back <= 7; back++ {
		d := today.AddDays(-back)
		if freq.ScheduledOn(d.Weekday()) {
			return d, true
		}
	}
	return domain.Date{}, false
}
