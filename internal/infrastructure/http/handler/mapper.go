package handler

import (
	"time"

	"github.com/rezkam/stride/internal/domain"
	"github.com/rezkam/stride/internal/ptr"
	"github.com/rezkam/stride/internal/reminder"
)

// HabitDTO is the wire representation of a habit.
type HabitDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	RoutineID        *string   `json:"routine_id,omitempty"`
	Frequency        string    `json:"frequency"`
	Weekdays         []int     `json:"weekdays,omitempty"`
	ReminderTime     string    `json:"reminder_time"`
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	TotalCompletions int       `json:"total_completions"`
	LastCompleted    *string   `json:"last_completed_date,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Etag             string    `json:"etag"`
}

// MapHabitToDTO converts a domain habit to its wire form.
func MapHabitToDTO(h *domain.Habit) HabitDTO {
	dto := HabitDTO{
		ID:               h.ID,
		Name:             h.Name,
		RoutineID:        h.RoutineID,
		Frequency:        h.Frequency.String(),
		Weekdays:         h.Frequency.Weekdays(),
		ReminderTime:     h.ReminderTime.String(),
		CurrentStreak:    h.CurrentStreak,
		LongestStreak:    h.LongestStreak,
		TotalCompletions: h.TotalCompletions,
		IsActive:         h.IsActive,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
		Etag:             h.Etag(),
	}
	if h.LastCompleted != nil {
		dto.LastCompleted = ptr.To(h.LastCompleted.String())
	}
	return dto
}

// ReminderDTO is one projected occurrence in an upcoming-reminders response.
type ReminderDTO struct {
	HabitID      string    `json:"habit_id"`
	OccurrenceAt time.Time `json:"occurrence_at"`
	MinutesUntil float64   `json:"minutes_until"`
}

// MapOccurrencesToDTO converts projected occurrences, computing minutes until
// each one relative to now.
func MapOccurrencesToDTO(occurrences []reminder.Occurrence, now time.Time) []ReminderDTO {
	out := make([]ReminderDTO, 0, len(occurrences))
	for _, o := range occurrences {
		out = append(out, ReminderDTO{
			HabitID:      o.HabitID,
			OccurrenceAt: o.At,
			MinutesUntil: o.At.Sub(now).Minutes(),
		})
	}
	return out
}
