// Package reminder projects upcoming habit occurrences into a lookahead
// window. The projection is pure and side-effect-free: it reads a snapshot of
// habits and shares no state across habits or users, so callers may fan it
// out per user freely.
package reminder

import (
	"slices"
	"strings"
	"time"

	"github.com/rezkam/stride/internal/domain"
)

// Occurrence is a single projected reminder slot for a habit.
type Occurrence struct {
	HabitID string
	At      time.Time
}

// Upcoming returns every occurrence of the given habits that falls inside
// [now, now+window], ordered by instant with ties broken by habit ID.
// Occurrence instants are the habit's reminder time on qualifying dates in
// loc, the owner's timezone. Inactive habits are skipped; their streaks are
// untouched by being excluded here.
//
// Qualifying dates by frequency:
//   - daily:  every day
//   - weekly: any day, once per week; the next slot at or after now, then
//     seven-day steps
//   - custom: days whose weekday is in the habit's set
func Upcoming(habits []*domain.Habit, loc *time.Location, now time.Time, window time.Duration) []Occurrence {
	if window <= 0 {
		return nil
	}
	end := now.Add(window)

	var out []Occurrence
	for _, h := range habits {
		if !h.IsActive {
			continue
		}
		out = append(out, occurrencesFor(h, loc, now, end)...)
	}

	slices.SortFunc(out, func(a, b Occurrence) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return strings.Compare(a.HabitID, b.HabitID)
	})
	return out
}

func occurrencesFor(h *domain.Habit, loc *time.Location, now, end time.Time) []Occurrence {
	var out []Occurrence

	// Walk calendar days across the window; AddDays carries month and year
	// boundaries.
	firstDay := domain.DateOf(now, loc)
	lastDay := domain.DateOf(end, loc)

	var weeklyNext *domain.Date

	for d := firstDay; !lastDay.Before(d); d = d.AddDays(1) {
		at := h.ReminderTime.At(d, loc)
		if at.Before(now) || at.After(end) {
			continue
		}

		switch h.Frequency.Kind() {
		case domain.FrequencyDaily:
			out = append(out, Occurrence{HabitID: h.ID, At: at})

		case domain.FrequencyWeekly:
			// The first in-window slot anchors the week; later slots repeat
			// at seven-day strides from it.
			if weeklyNext == nil {
				weeklyNext = &d
			}
			if d.Equal(*weeklyNext) {
				out = append(out, Occurrence{HabitID: h.ID, At: at})
				next := d.AddDays(7)
				weeklyNext = &next
			}

		case domain.FrequencyCustom:
			if h.Frequency.ScheduledOn(d.Weekday()) {
				out = append(out, Occurrence{HabitID: h.ID, At: at})
			}
		}
	}
	return out
}
