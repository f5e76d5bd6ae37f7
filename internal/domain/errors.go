package domain

import "errors"

// Domain errors returned by the habit engine and its repositories.

var (
	// ErrHabitNotFound indicates the habit does not exist or is not owned by the caller.
	// Ownership misses are deliberately indistinguishable from missing rows.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrInvalidSchedule indicates a malformed frequency/weekday combination.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrScheduleMismatch indicates a completion attempt on a day the habit's
	// custom schedule does not cover.
	ErrScheduleMismatch = errors.New("habit is not scheduled for this day")

	// ErrVersionConflict indicates a versioned write lost a race with a
	// concurrent update. Callers re-read and retry.
	ErrVersionConflict = errors.New("version conflict")

	// ErrConflict indicates a completion kept losing races to concurrent
	// writers until its retries ran out. The operation is safe to retry.
	ErrConflict = errors.New("concurrent update conflict, retry")

	// ErrNameRequired indicates a missing habit name.
	ErrNameRequired = errors.New("name is required")

	// ErrNameTooLong indicates the habit name exceeds 120 characters.
	ErrNameTooLong = errors.New("name too long")

	// ErrInvalidReminderTime indicates a reminder time outside HH:MM form.
	ErrInvalidReminderTime = errors.New("invalid reminder time")

	// ErrUnauthorized indicates a missing or invalid access token.
	ErrUnauthorized = errors.New("unauthorized")
)
