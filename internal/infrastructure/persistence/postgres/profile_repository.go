package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rezkam/stride/internal/domain"
)

// Resolve returns the owner's IANA timezone location. Owners without a
// profile row resolve to UTC; an unparseable stored name is surfaced rather
// than silently falling back, since a wrong location would shift day
// boundaries and corrupt streak decisions.
func (s *Store) Resolve(ctx context.Context, ownerID string) (*time.Location, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}

	var name string
	err = s.pool.QueryRow(ctx,
		`SELECT timezone FROM user_profiles WHERE user_id = $1`, owner).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.UTC, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load owner timezone: %w", err)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("stored timezone %q is invalid: %w", name, err)
	}
	return loc, nil
}
