// Package worker runs the periodic reminder scan: every tick it fans out over
// users with active habits, projects their upcoming occurrences, and emits
// them. Delivery (push, email) is a downstream concern; the scan only
// computes and logs the schedule.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rezkam/stride/internal/application/habit"
	"github.com/rezkam/stride/internal/reminder"
)

// Worker schedules reminder scans over all users with active habits.
type Worker struct {
	repo             habit.Repository
	timezones        habit.TimezoneResolver
	scanInterval     time.Duration
	lookahead        time.Duration
	operationTimeout time.Duration
	wg               sync.WaitGroup
}

// Option is a functional option for configuring Worker.
type Option func(*Worker)

// WithScanInterval sets how often the worker runs a scan.
func WithScanInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.scanInterval = d
	}
}

// WithLookahead sets the projection window of each scan.
func WithLookahead(d time.Duration) Option {
	return func(w *Worker) {
		w.lookahead = d
	}
}

// WithOperationTimeout sets the timeout for individual storage operations.
func WithOperationTimeout(d time.Duration) Option {
	return func(w *Worker) {
		w.operationTimeout = d
	}
}

// New creates a new Worker with the given repository and options.
func New(repo habit.Repository, timezones habit.TimezoneResolver, opts ...Option) *Worker {
	w := &Worker{
		repo:             repo,
		timezones:        timezones,
		scanInterval:     15 * time.Minute,
		lookahead:        24 * time.Hour,
		operationTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start runs the scan loop until the context is cancelled. An initial scan
// fires immediately so a restarted worker does not wait a full interval.
func (w *Worker) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "reminder scan worker starting",
		"scan_interval", w.scanInterval,
		"lookahead", w.lookahead)

	ticker := time.NewTicker(w.scanInterval)
	defer ticker.Stop()

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			slog.InfoContext(ctx, "reminder scan worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// Stop waits for an in-flight scan to finish.
func (w *Worker) Stop() {
	w.wg.Wait()
}

// scan projects upcoming occurrences for every user with active habits.
// Users are independent: one failing resolve or load skips that user only.
func (w *Worker) scan(ctx context.Context) {
	w.wg.Add(1)
	defer w.wg.Done()

	opCtx, cancel := context.WithTimeout(ctx, w.operationTimeout)
	owners, err := w.repo.OwnersWithActiveHabits(opCtx)
	cancel()
	if err != nil {
		slog.ErrorContext(ctx, "reminder scan failed to list owners", "error", err)
		return
	}

	now := time.Now()
	total := 0
	for _, owner := range owners {
		occurrences, err := w.scanOwner(ctx, owner, now)
		if err != nil {
			slog.ErrorContext(ctx, "reminder scan failed for owner",
				"owner_id", owner,
				"error", err)
			continue
		}
		for _, o := range occurrences {
			slog.InfoContext(ctx, "upcoming reminder",
				"owner_id", owner,
				"habit_id", o.HabitID,
				"occurrence_at", o.At)
		}
		total += len(occurrences)
	}

	slog.InfoContext(ctx, "reminder scan complete",
		"owners", len(owners),
		"occurrences", total)
}

func (w *Worker) scanOwner(ctx context.Context, ownerID string, now time.Time) ([]reminder.Occurrence, error) {
	opCtx, cancel := context.WithTimeout(ctx, w.operationTimeout)
	defer cancel()

	loc, err := w.timezones.Resolve(opCtx, ownerID)
	if err != nil {
		return nil, err
	}

	habits, err := w.repo.FindByOwner(opCtx, ownerID, true)
	if err != nil {
		return nil, err
	}

	return reminder.Upcoming(habits, loc, now, w.lookahead), nil
}
