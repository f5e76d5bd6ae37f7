package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rezkam/stride/internal/domain"
)

const habitColumns = `id, owner_id, routine_id, name, frequency, weekdays, reminder_time,
	current_streak, longest_streak, total_completions, last_completed_date,
	is_active, created_at, updated_at, version`

// Create persists a new habit. The version starts at the column default (1).
func (s *Store) Create(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	id, err := uuid.Parse(h.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	ownerID, err := uuid.Parse(h.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO habits (id, owner_id, routine_id, name, frequency, weekdays, reminder_time, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+habitColumns,
		id, ownerID, h.RoutineID, h.Name, h.Frequency.String(), weekdaysToDB(h.Frequency),
		h.ReminderTime.String(), h.IsActive, h.CreatedAt, h.UpdatedAt)

	created, err := scanHabit(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	return created, nil
}

// FindByID retrieves a habit scoped to its owner. An ownership miss is
// reported identically to a missing row.
func (s *Store) FindByID(ctx context.Context, habitID, ownerID string) (*domain.Habit, error) {
	id, owner, err := parseIDs(habitID, ownerID)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = $1 AND owner_id = $2`,
		id, owner)

	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: habit %s", domain.ErrHabitNotFound, habitID)
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

// FindByOwner lists a user's habits, newest first.
func (s *Store) FindByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Habit, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}

	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}
	return habits, nil
}

// Update applies a field-masked edit with optional etag check. The version
// is bumped on every successful write.
func (s *Store) Update(ctx context.Context, params domain.UpdateHabitParams) (*domain.Habit, error) {
	id, owner, err := parseIDs(params.HabitID, params.OwnerID)
	if err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()", "version = version + 1"}
	args := []any{id, owner}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, field := range params.UpdateMask {
		switch field {
		case domain.FieldName:
			sets = append(sets, "name = "+arg(*params.Name))
		case domain.FieldFrequency:
			sets = append(sets, "frequency = "+arg(params.Frequency.String()))
			sets = append(sets, "weekdays = "+arg(weekdaysToDB(*params.Frequency)))
		case domain.FieldReminderTime:
			sets = append(sets, "reminder_time = "+arg(params.ReminderTime.String()))
		case domain.FieldIsActive:
			sets = append(sets, "is_active = "+arg(*params.IsActive))
		case domain.FieldRoutineID:
			sets = append(sets, "routine_id = "+arg(params.RoutineID))
		default:
			return nil, fmt.Errorf("unknown update field %q", field)
		}
	}

	query := `UPDATE habits SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND owner_id = $2`
	if params.Etag != nil {
		var version int
		if _, err := fmt.Sscanf(*params.Etag, "%d", &version); err != nil {
			return nil, fmt.Errorf("%w: malformed etag %q", domain.ErrVersionConflict, *params.Etag)
		}
		query += ` AND version = ` + arg(version)
	}
	query += ` RETURNING ` + habitColumns

	h, err := scanHabit(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.explainMissedWrite(ctx, id, owner, params.Etag)
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

// RecordCompletion writes streak state as a single atomic compare-and-swap
// against expectedVersion. Zero rows means either the habit vanished or a
// concurrent writer bumped the version; the two are distinguished so the
// service can re-read and re-evaluate only on real conflicts.
func (s *Store) RecordCompletion(ctx context.Context, h *domain.Habit, expectedVersion int) (*domain.Habit, error) {
	id, owner, err := parseIDs(h.ID, h.OwnerID)
	if err != nil {
		return nil, err
	}

	var lastCompleted *time.Time
	if h.LastCompleted != nil {
		t := h.LastCompleted.Time(time.UTC)
		lastCompleted = &t
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE habits
		SET current_streak = $1,
		    longest_streak = $2,
		    total_completions = $3,
		    last_completed_date = $4,
		    updated_at = $5,
		    version = version + 1
		WHERE id = $6 AND owner_id = $7 AND version = $8
		RETURNING `+habitColumns,
		h.CurrentStreak, h.LongestStreak, h.TotalCompletions, lastCompleted,
		h.UpdatedAt, id, owner, expectedVersion)

	updated, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.explainMissedWrite(ctx, id, owner, nil)
		}
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}
	return updated, nil
}

// Delete removes a habit. Deletion is an explicit external operation; the
// engine itself never calls this as a side effect.
func (s *Store) Delete(ctx context.Context, habitID, ownerID string) error {
	id, owner, err := parseIDs(habitID, ownerID)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: habit %s", domain.ErrHabitNotFound, habitID)
	}
	return nil
}

// OwnersWithActiveHabits returns distinct owner IDs holding at least one
// active habit.
func (s *Store) OwnersWithActiveHabits(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT owner_id FROM habits WHERE is_active ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner uuid.UUID
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner.String())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}
	return owners, nil
}

// explainMissedWrite resolves a zero-row guarded UPDATE into not-found or
// version-conflict.
func (s *Store) explainMissedWrite(ctx context.Context, id, owner uuid.UUID, etag *string) error {
	var current int
	err := s.pool.QueryRow(ctx,
		`SELECT version FROM habits WHERE id = $1 AND owner_id = $2`, id, owner).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: habit %s", domain.ErrHabitNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect habit version: %w", err)
	}
	if etag != nil {
		return fmt.Errorf("%w: expected version %s, current version %d", domain.ErrVersionConflict, *etag, current)
	}
	return fmt.Errorf("%w: current version %d", domain.ErrVersionConflict, current)
}

func parseIDs(habitID, ownerID string) (uuid.UUID, uuid.UUID, error) {
	id, err := uuid.Parse(habitID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return id, owner, nil
}

func weekdaysToDB(f domain.Frequency) []int16 {
	days := f.Weekdays()
	if days == nil {
		return nil
	}
	out := make([]int16, len(days))
	for i, d := range days {
		out[i] = int16(d)
	}
	return out
}

// scanHabit reads one habit row in habitColumns order.
func scanHabit(row pgx.Row) (*domain.Habit, error) {
	var (
		id, owner     uuid.UUID
		routineID     *uuid.UUID
		name          string
		frequency     string
		weekdays      []int16
		reminderTime  string
		lastCompleted *time.Time
		h             domain.Habit
	)

	err := row.Scan(&id, &owner, &routineID, &name, &frequency, &weekdays, &reminderTime,
		&h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions, &lastCompleted,
		&h.IsActive, &h.CreatedAt, &h.UpdatedAt, &h.Version)
	if err != nil {
		return nil, err
	}

	h.ID = id.String()
	h.OwnerID = owner.String()
	h.Name = name
	if routineID != nil {
		v := routineID.String()
		h.RoutineID = &v
	}

	days := make([]int, len(weekdays))
	for i, d := range weekdays {
		days[i] = int(d)
	}
	if len(days) == 0 {
		days = nil
	}
	h.Frequency, err = domain.NewFrequency(frequency, days)
	if err != nil {
		return nil, fmt.Errorf("stored schedule is invalid: %w", err)
	}

	h.ReminderTime, err = domain.ParseReminderTime(reminderTime)
	if err != nil {
		return nil, fmt.Errorf("stored reminder time is invalid: %w", err)
	}

	if lastCompleted != nil {
		d := domain.DateOf(*lastCompleted, time.UTC)
		h.LastCompleted = &d
	}

	h.CreatedAt = h.CreatedAt.UTC()
	h.UpdatedAt = h.UpdatedAt.UTC()

	return &h, nil
}
