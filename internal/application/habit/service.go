package habit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rezkam/stride/internal/domain"
	"github.com/rezkam/stride/internal/reminder"
	"github.com/rezkam/stride/internal/streak"
)

// Default configuration values.
const (
	DefaultCompletionRetries = 3
	DefaultLookaheadHours    = 24
)

// Config holds configuration for the Service.
type Config struct {
	// Thresholds are the streak milestones reported on completion.
	Thresholds streak.Thresholds

	// CompletionRetries bounds the re-read/retry loop when a completion
	// write races a concurrent update.
	CompletionRetries int

	// DefaultLookahead is the reminder window applied when the caller does
	// not specify one.
	DefaultLookahead time.Duration

	// Policy is the streak continuation rule. The weekly boundary rule in
	// particular is kept swappable pending product clarification.
	Policy streak.ContinuationPolicy
}

// Service provides business logic for habit tracking: schedule validation,
// completion recording with streak and milestone evaluation, and reminder
// projection. It orchestrates operations using the Repository interface.
type Service struct {
	repo      Repository
	timezones TimezoneResolver
	config    Config
}

// NewService creates a new habit service.
// Applies application defaults for zero or invalid config values.
func NewService(repo Repository, timezones TimezoneResolver, config Config) *Service {
	if len(config.Thresholds) == 0 {
		config.Thresholds = streak.DefaultThresholds
	}
	if config.CompletionRetries <= 0 {
		config.CompletionRetries = DefaultCompletionRetries
	}
	if config.DefaultLookahead <= 0 {
		config.DefaultLookahead = DefaultLookaheadHours * time.Hour
	}
	if config.Policy == nil {
		config.Policy = streak.DefaultPolicy{}
	}

	return &Service{
		repo:      repo,
		timezones: timezones,
		config:    config,
	}
}

// CreateParams carries the caller-supplied fields for a new habit.
type CreateParams struct {
	OwnerID      string
	Name         string
	Frequency    string
	Weekdays     []int
	ReminderTime string
	RoutineID    *string
}

// Create validates the schedule and reminder time and persists a habit with
// zeroed streak state.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domain.Habit, error) {
	name, err := domain.NewName(params.Name)
	if err != nil {
		return nil, err
	}

	freq, err := domain.NewFrequency(params.Frequency, params.Weekdays)
	if err != nil {
		return nil, err
	}

	remindAt, err := domain.ParseReminderTime(params.ReminderTime)
	if err != nil {
		return nil, err
	}

	if params.RoutineID != nil {
		if _, err := uuid.Parse(*params.RoutineID); err != nil {
			return nil, fmt.Errorf("%w: routine id", domain.ErrInvalidID)
		}
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	h := &domain.Habit{
		ID:           idObj.String(),
		OwnerID:      params.OwnerID,
		Name:         name.String(),
		RoutineID:    params.RoutineID,
		Frequency:    freq,
		ReminderTime: remindAt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return created, nil
}

// Get retrieves a single habit owned by the caller.
func (s *Service) Get(ctx context.Context, habitID, ownerID string) (*domain.Habit, error) {
	if habitID == "" {
		return nil, domain.ErrHabitNotFound
	}
	return s.repo.FindByID(ctx, habitID, ownerID)
}

// List retrieves the caller's habits, optionally filtered to active ones.
func (s *Service) List(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Habit, error) {
	habits, err := s.repo.FindByOwner(ctx, ownerID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// Update applies a field-masked edit to a habit's schedule, name, reminder
// time, routine link, or active flag.
func (s *Service) Update(ctx context.Context, params domain.UpdateHabitParams) (*domain.Habit, error) {
	if params.HabitID == "" {
		return nil, domain.ErrHabitNotFound
	}

	for _, field := range params.UpdateMask {
		switch field {
		case domain.FieldName:
			if params.Name == nil {
				return nil, fmt.Errorf("%w: name value missing from update", domain.ErrNameRequired)
			}
			name, err := domain.NewName(*params.Name)
			if err != nil {
				return nil, err
			}
			v := name.String()
			params.Name = &v
		case domain.FieldFrequency:
			if params.Frequency == nil {
				return nil, fmt.Errorf("%w: frequency value missing from update", domain.ErrInvalidSchedule)
			}
		case domain.FieldReminderTime:
			if params.ReminderTime == nil {
				return nil, fmt.Errorf("%w: reminder time value missing from update", domain.ErrInvalidReminderTime)
			}
		case domain.FieldRoutineID:
			// nil is a valid value for routine_id (unlink)
			if params.RoutineID != nil {
				if _, err := uuid.Parse(*params.RoutineID); err != nil {
					return nil, fmt.Errorf("%w: routine id", domain.ErrInvalidID)
				}
			}
		case domain.FieldIsActive:
		default:
			return nil, fmt.Errorf("unknown update field %q", field)
		}
	}

	updated, err := s.repo.Update(ctx, params)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a habit. Deletion is always an explicit caller action; the
// engine never deletes habits on its own.
func (s *Service) Delete(ctx context.Context, habitID, ownerID string) error {
	if habitID == "" {
		return domain.ErrHabitNotFound
	}
	return s.repo.Delete(ctx, habitID, ownerID)
}

// CompletionResult is the outcome of a completion attempt. The milestone flag
// travels with the updated habit so callers cannot observe one without the
// other.
type CompletionResult struct {
	Habit *domain.Habit

	// Milestone is true when the streak transition crossed a configured
	// threshold.
	Milestone bool

	// AlreadyCompleted is true when the habit was already completed on the
	// same owner-local calendar date. The call is then a no-op, not an error.
	AlreadyCompleted bool
}

// Complete records a "mark done" action for a habit at the given instant.
//
// The calendar date is resolved in the owner's timezone. A second completion
// on the same date is an idempotent no-op. Otherwise the streak advances (or
// resets) per the habit's frequency, the longest streak and completion total
// are updated, and the new state is written with a compare-and-swap on the
// habit version. On a write conflict the current state is re-read and the
// same-day check re-evaluated, so racing callers converge on exactly one
// recorded completion per day.
func (s *Service) Complete(ctx context.Context, habitID, ownerID string, now time.Time) (*CompletionResult, error) {
	if habitID == "" {
		return nil, domain.ErrHabitNotFound
	}

	loc, err := s.timezones.Resolve(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner timezone: %w", err)
	}
	today := domain.DateOf(now, loc)

	h, err := s.repo.FindByID(ctx, habitID, ownerID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.config.CompletionRetries; attempt++ {
		if h.Frequency.Kind() == domain.FrequencyCustom && !h.Frequency.ScheduledOn(today.Weekday()) {
			return nil, fmt.Errorf("%w: %s is not in the habit schedule", domain.ErrScheduleMismatch, today.Weekday())
		}

		if h.LastCompleted != nil && h.LastCompleted.Equal(today) {
			return &CompletionResult{Habit: h, AlreadyCompleted: true}, nil
		}

		oldStreak := h.CurrentStreak
		newStreak := streak.Advance(s.config.Policy, h.Frequency, h.CurrentStreak, h.LastCompleted, today)

		updated := *h
		updated.CurrentStreak = newStreak
		updated.LongestStreak = max(h.LongestStreak, newStreak)
		updated.TotalCompletions = h.TotalCompletions + 1
		completedOn := today
		updated.LastCompleted = &completedOn
		updated.UpdatedAt = now.UTC()

		persisted, err := s.repo.RecordCompletion(ctx, &updated, h.Version)
		if err == nil {
			return &CompletionResult{
				Habit:     persisted,
				Milestone: s.config.Thresholds.Crossed(oldStreak, newStreak),
			}, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to record completion: %w", err)
		}

		// Lost the race. Re-read and re-evaluate; the usual case is another
		// device completing the same day, which exits via the no-op path.
		slog.InfoContext(ctx, "completion write conflicted, re-reading",
			"habit_id", habitID,
			"attempt", attempt+1)

		h, err = s.repo.FindByID(ctx, habitID, ownerID)
		if err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: habit %s", domain.ErrConflict, habitID)
}

// UpcomingReminders projects the caller's active habit occurrences within the
// lookahead window. A non-positive window falls back to the configured
// default.
func (s *Service) UpcomingReminders(ctx context.Context, ownerID string, now time.Time, window time.Duration) ([]reminder.Occurrence, error) {
	if window <= 0 {
		window = s.config.DefaultLookahead
	}

	loc, err := s.timezones.Resolve(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner timezone: %w", err)
	}

	habits, err := s.repo.FindByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	return reminder.Upcoming(habits, loc, now, window), nil
}
