package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rezkam/stride/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanRepo implements habit.Repository for the scan path; the write methods
// are never reached by the worker.
type scanRepo struct {
	mu         sync.Mutex
	owners     []string
	habits     map[string][]*domain.Habit
	ownersErr  error
	loadErr    map[string]error
	ownerCalls int
	loadCalls  map[string]int
}

func (r *scanRepo) OwnersWithActiveHabits(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ownerCalls++
	return r.owners, r.ownersErr
}

func (r *scanRepo) FindByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadCalls == nil {
		r.loadCalls = make(map[string]int)
	}
	r.loadCalls[ownerID]++
	if err := r.loadErr[ownerID]; err != nil {
		return nil, err
	}
	return r.habits[ownerID], nil
}

func (r *scanRepo) Create(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	panic("not used by the worker")
}

func (r *scanRepo) FindByID(ctx context.Context, habitID, ownerID string) (*domain.Habit, error) {
	panic("not used by the worker")
}

func (r *scanRepo) Update(ctx context.Context, params domain.UpdateHabitParams) (*domain.Habit, error) {
	panic("not used by the worker")
}

func (r *scanRepo) RecordCompletion(ctx context.Context, h *domain.Habit, expectedVersion int) (*domain.Habit, error) {
	panic("not used by the worker")
}

func (r *scanRepo) Delete(ctx context.Context, habitID, ownerID string) error {
	panic("not used by the worker")
}

type utcResolver struct{}

func (utcResolver) Resolve(ctx context.Context, ownerID string) (*time.Location, error) {
	return time.UTC, nil
}

func activeHabit(t *testing.T, id string) *domain.Habit {
	t.Helper()
	freq, err := domain.NewFrequency("daily", nil)
	require.NoError(t, err)
	rt, err := domain.ParseReminderTime("07:00")
	require.NoError(t, err)
	return &domain.Habit{
		ID:           id,
		OwnerID:      "owner-1",
		Name:         "habit",
		Frequency:    freq,
		ReminderTime: rt,
		IsActive:     true,
		Version:      1,
	}
}

func TestScanFansOutPerOwner(t *testing.T) {
	repo := &scanRepo{
		owners: []string{"owner-1", "owner-2"},
		habits: map[string][]*domain.Habit{
			"owner-1": {activeHabit(t, "h1")},
		},
	}
	w := New(repo, utcResolver{})

	w.scan(context.Background())

	assert.Equal(t, 1, repo.ownerCalls)
	assert.Equal(t, 1, repo.loadCalls["owner-1"])
	assert.Equal(t, 1, repo.loadCalls["owner-2"])
}

func TestScanSkipsFailingOwner(t *testing.T) {
	repo := &scanRepo{
		owners: []string{"owner-1", "owner-2"},
		habits: map[string][]*domain.Habit{
			"owner-2": {activeHabit(t, "h2")},
		},
		loadErr: map[string]error{"owner-1": errors.New("load failed")},
	}
	w := New(repo, utcResolver{})

	// The failing owner must not stop the scan for the rest.
	w.scan(context.Background())

	assert.Equal(t, 1, repo.loadCalls["owner-2"])
}

func TestScanSurvivesOwnerListError(t *testing.T) {
	repo := &scanRepo{ownersErr: errors.New("db down")}
	w := New(repo, utcResolver{})

	w.scan(context.Background())

	assert.Equal(t, 1, repo.ownerCalls)
}

func TestStartRunsImmediateScanAndStopsOnCancel(t *testing.T) {
	repo := &scanRepo{owners: []string{"owner-1"}}
	w := New(repo, utcResolver{}, WithScanInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// The initial scan fires without waiting for the first tick.
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.ownerCalls == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
	w.Stop()
}

func TestOptions(t *testing.T) {
	w := New(&scanRepo{}, utcResolver{},
		WithScanInterval(time.Minute),
		WithLookahead(2*time.Hour),
		WithOperationTimeout(5*time.Second),
	)

	assert.Equal(t, time.Minute, w.scanInterval)
	assert.Equal(t, 2*time.Hour, w.lookahead)
	assert.Equal(t, 5*time.Second, w.operationTimeout)
}
