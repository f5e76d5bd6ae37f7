package habit

import (
	"context"
	"time"

	"github.com/rezkam/stride/internal/domain"
)

// Repository defines storage operations for habit management.
// Create/update operations return the entity as persisted, including version.
type Repository interface {
	// Create persists a new habit.
	// Returns the created habit with version populated by the persistence layer.
	Create(ctx context.Context, habit *domain.Habit) (*domain.Habit, error)

	// FindByID retrieves a habit scoped to its owner.
	// Returns domain.ErrHabitNotFound if the habit doesn't exist or belongs
	// to a different owner.
	FindByID(ctx context.Context, habitID, ownerID string) (*domain.Habit, error)

	// FindByOwner lists a user's habits, optionally only active ones.
	FindByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Habit, error)

	// Update updates a habit using field mask and optional etag.
	// Only fields specified in UpdateMask are modified; streak state is
	// untouched by this path.
	// Returns domain.ErrHabitNotFound if the habit doesn't exist.
	// Returns domain.ErrVersionConflict if the etag doesn't match the
	// current version.
	Update(ctx context.Context, params domain.UpdateHabitParams) (*domain.Habit, error)

	// RecordCompletion writes the habit's streak state as a single atomic
	// compare-and-swap against expectedVersion.
	// Returns domain.ErrVersionConflict when a concurrent writer got there
	// first; the caller re-reads and re-evaluates.
	// Returns domain.ErrHabitNotFound if the habit no longer exists.
	RecordCompletion(ctx context.Context, habit *domain.Habit, expectedVersion int) (*domain.Habit, error)

	// Delete removes a habit and its completion state.
	// Returns domain.ErrHabitNotFound if the habit doesn't exist.
	Delete(ctx context.Context, habitID, ownerID string) error

	// OwnersWithActiveHabits returns the distinct owner IDs that have at
	// least one active habit. Used by the reminder scan to fan out per user.
	OwnersWithActiveHabits(ctx context.Context) ([]string, error)
}

// TimezoneResolver resolves the IANA timezone of a habit owner. Day
// boundaries for streak decisions are always computed in the owner's
// location, never in a fixed UTC offset.
type TimezoneResolver interface {
	Resolve(ctx context.Context, ownerID string) (*time.Location, error)
}
