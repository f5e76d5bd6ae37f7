// Package postgres implements the habit repository and timezone resolver on
// PostgreSQL via pgx. Completion writes are compare-and-swap updates on the
// habit version column.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements habit.Repository and habit.TimezoneResolver using
// PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the connection pool. Call on shutdown.
func (s *Store) Close() {
	s.pool.Close()
}
