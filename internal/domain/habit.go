package domain

import (
	"fmt"
	"time"
)

// Habit is an aggregate root: a user-owned recurring activity with streak
// state. Streak fields are mutated only through the completion flow; schedule
// and the active flag change only through explicit edits.
//
// Invariants held after every successful operation:
//   - CurrentStreak <= LongestStreak
//   - TotalCompletions >= CurrentStreak
//   - at most one completion per calendar date (owner-local)
type Habit struct {
	ID      string
	OwnerID string

	Name      string
	RoutineID *string // optional link to a workout routine, opaque to this engine

	Frequency    Frequency
	ReminderTime ReminderTime

	CurrentStreak    int
	LongestStreak    int
	TotalCompletions int
	LastCompleted    *Date // owner-local calendar date, nil if never completed

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Optimistic locking version for concurrent update protection
	Version int
}

// Etag returns the entity tag for this habit, derived from the version number
// and used for optimistic concurrency control.
func (h *Habit) Etag() string {
	return fmt.Sprintf("%d", h.Version)
}

// Field names for Habit update masks.
const (
	FieldName         = "name"
	FieldFrequency    = "frequency"
	FieldReminderTime = "reminder_time"
	FieldIsActive     = "is_active"
	FieldRoutineID    = "routine_id"
)

// UpdateHabitParams contains parameters for updating a habit with field mask
// support. Uses client-side optimistic concurrency control via etag.
// Streak fields are not updatable through this path.
type UpdateHabitParams struct {
	HabitID string
	OwnerID string

	// Etag for optimistic concurrency control. Numeric string, e.g. "1", "2".
	// If provided and it doesn't match the current version, the update
	// returns ErrVersionConflict.
	Etag *string

	// UpdateMask specifies which fields to update.
	// Only fields in this list will be modified.
	UpdateMask []string

	// Field values (only applied if the field is in UpdateMask)
	Name         *string
	Frequency    *Frequency
	ReminderTime *ReminderTime
	IsActive     *bool
	RoutineID    *string
}
