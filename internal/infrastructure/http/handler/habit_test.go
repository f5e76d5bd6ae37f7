package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rezkam/stride/internal/application/habit"
	"github.com/rezkam/stride/internal/domain"
	"github.com/rezkam/stride/internal/infrastructure/http/middleware"
	"github.com/rezkam/stride/internal/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwnerID = "3d0f8f1e-0000-7000-8000-000000000001"

// memRepo is an in-memory habit.Repository with version-checked writes,
// enough to drive the handlers end to end.
type memRepo struct {
	mu     sync.Mutex
	habits map[string]*domain.Habit
}

func newMemRepo() *memRepo {
	return &memRepo{habits: make(map[string]*domain.Habit)}
}

func (m *memRepo) Create(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *h
	stored.Version = 1
	m.habits[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memRepo) FindByID(ctx context.Context, habitID, ownerID string) (*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[habitID]
	if !ok || h.OwnerID != ownerID {
		return nil, domain.ErrHabitNotFound
	}
	out := *h
	return &out, nil
}

func (m *memRepo) FindByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Habit
	for _, h := range m.habits {
		if h.OwnerID != ownerID {
			continue
		}
		if activeOnly && !h.IsActive {
			continue
		}
		c := *h
		out = append(out, &c)
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, params domain.UpdateHabitParams) (*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[params.HabitID]
	if !ok || h.OwnerID != params.OwnerID {
		return nil, domain.ErrHabitNotFound
	}
	if params.Etag != nil && *params.Etag != h.Etag() {
		return nil, domain.ErrVersionConflict
	}
	for _, field := range params.UpdateMask {
		switch field {
		case domain.FieldName:
			h.Name = *params.Name
		case domain.FieldFrequency:
			h.Frequency = *params.Frequency
		case domain.FieldReminderTime:
			h.ReminderTime = *params.ReminderTime
		case domain.FieldIsActive:
			h.IsActive = *params.IsActive
		case domain.FieldRoutineID:
			h.RoutineID = params.RoutineID
		}
	}
	h.Version++
	out := *h
	return &out, nil
}

func (m *memRepo) RecordCompletion(ctx context.Context, habit *domain.Habit, expectedVersion int) (*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.habits[habit.ID]
	if !ok || cur.OwnerID != habit.OwnerID {
		return nil, domain.ErrHabitNotFound
	}
	if cur.Version != expectedVersion {
		return nil, domain.ErrVersionConflict
	}
	stored := *habit
	stored.Version = expectedVersion + 1
	m.habits[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memRepo) Delete(ctx context.Context, habitID, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[habitID]
	if !ok || h.OwnerID != ownerID {
		return domain.ErrHabitNotFound
	}
	delete(m.habits, habitID)
	return nil
}

func (m *memRepo) OwnersWithActiveHabits(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, h := range m.habits {
		if h.IsActive && !seen[h.OwnerID] {
			seen[h.OwnerID] = true
			out = append(out, h.OwnerID)
		}
	}
	return out, nil
}

type staticTZ struct{ loc *time.Location }

func (s staticTZ) Resolve(ctx context.Context, ownerID string) (*time.Location, error) {
	return s.loc, nil
}

// newTestRouter wires the handler behind the real route tree with the
// authenticated user injected directly, bypassing token validation.
func newTestRouter(t *testing.T, repo habit.Repository, now time.Time) http.Handler {
	t.Helper()
	svc := habit.NewService(repo, staticTZ{time.UTC}, habit.Config{})
	h := NewHabitHandler(svc)
	h.now = func() time.Time { return now }

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), testOwnerID)))
		})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Route("/habits", func(r chi.Router) {
			r.Post("/", h.CreateHabit)
			r.Get("/", h.ListHabits)
			r.Route("/{habit_id}", func(r chi.Router) {
				r.Get("/", h.GetHabit)
				r.Patch("/", h.UpdateHabit)
				r.Delete("/", h.DeleteHabit)
				r.Post("/complete", h.CompleteHabit)
			})
		})
		r.Get("/reminders/upcoming", h.UpcomingReminders)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createHabit(t *testing.T, router http.Handler, body CreateHabitRequest) HabitDTO {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/habits", body)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp struct {
		Habit HabitDTO `json:"habit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Habit
}

func TestCreateHabitEndpoint(t *testing.T) {
	now := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)

	t.Run("valid custom habit", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)

		dto := createHabit(t, router, CreateHabitRequest{
			Name:         "Morning run",
			Frequency:    "custom",
			Weekdays:     []int{1, 3, 5},
			ReminderTime: "07:00",
		})

		assert.NotEmpty(t, dto.ID)
		assert.Equal(t, "Morning run", dto.Name)
		assert.Equal(t, "custom", dto.Frequency)
		assert.Equal(t, []int{1, 3, 5}, dto.Weekdays)
		assert.Equal(t, "07:00", dto.ReminderTime)
		assert.True(t, dto.IsActive)
		assert.Equal(t, 0, dto.CurrentStreak)
		assert.Nil(t, dto.LastCompleted)
		assert.Equal(t, "1", dto.Etag)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)

		w := doJSON(t, router, http.MethodPost, "/v1/habits", CreateHabitRequest{
			Name:         "Broken",
			Frequency:    "custom",
			ReminderTime: "07:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)

		req := httptest.NewRequest(http.MethodPost, "/v1/habits", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCompleteHabitEndpoint(t *testing.T) {
	now := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)

	t.Run("completion then same-day repeat", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)
		dto := createHabit(t, router, CreateHabitRequest{
			Name:         "Meditate",
			Frequency:    "daily",
			ReminderTime: "07:00",
		})

		w := doJSON(t, router, http.MethodPost, "/v1/habits/"+dto.ID+"/complete", nil)
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

		var first CompleteHabitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
		assert.Equal(t, 1, first.Habit.CurrentStreak)
		assert.Equal(t, 1, first.Habit.TotalCompletions)
		assert.False(t, first.StreakMilestone)
		assert.False(t, first.AlreadyCompletedToday)
		assert.Equal(t, "2025-03-11", ptr.Deref(first.Habit.LastCompleted, ""))

		w = doJSON(t, router, http.MethodPost, "/v1/habits/"+dto.ID+"/complete", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var second CompleteHabitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
		assert.True(t, second.AlreadyCompletedToday)
		assert.Equal(t, 1, second.Habit.CurrentStreak)
		assert.Equal(t, 1, second.Habit.TotalCompletions, "same-day repeat must not add a completion")
	})

	t.Run("unscheduled day returns 422", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)
		// 2025-03-11 is a Tuesday; schedule is Mon/Wed/Fri.
		dto := createHabit(t, router, CreateHabitRequest{
			Name:         "Lift",
			Frequency:    "custom",
			Weekdays:     []int{1, 3, 5},
			ReminderTime: "18:00",
		})

		w := doJSON(t, router, http.MethodPost, "/v1/habits/"+dto.ID+"/complete", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "body: %s", w.Body.String())
	})

	t.Run("missing habit returns 404", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)

		w := doJSON(t, router, http.MethodPost, "/v1/habits/nope/complete", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateHabitEndpoint(t *testing.T) {
	now := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)

	t.Run("rename bumps the etag", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)
		dto := createHabit(t, router, CreateHabitRequest{
			Name:         "Read",
			Frequency:    "daily",
			ReminderTime: "21:00",
		})

		w := doJSON(t, router, http.MethodPatch, "/v1/habits/"+dto.ID, UpdateHabitRequest{
			UpdateMask: []string{domain.FieldName},
			Name:       ptr.To("Read fiction"),
		})
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

		var resp struct {
			Habit HabitDTO `json:"habit"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Read fiction", resp.Habit.Name)
		assert.Equal(t, "2", resp.Habit.Etag)
	})

	t.Run("stale etag returns 409", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)
		dto := createHabit(t, router, CreateHabitRequest{
			Name:         "Read",
			Frequency:    "daily",
			ReminderTime: "21:00",
		})

		w := doJSON(t, router, http.MethodPatch, "/v1/habits/"+dto.ID, UpdateHabitRequest{
			UpdateMask: []string{domain.FieldName},
			Etag:       ptr.To("42"),
			Name:       ptr.To("Read more"),
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing update_mask returns 400", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)
		dto := createHabit(t, router, CreateHabitRequest{
			Name:         "Read",
			Frequency:    "daily",
			ReminderTime: "21:00",
		})

		w := doJSON(t, router, http.MethodPatch, "/v1/habits/"+dto.ID, UpdateHabitRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid frequency edit returns 400", func(t *testing.T) {
		router := newTestRouter(t, newMemRepo(), now)
		dto := createHabit(t, router, CreateHabitRequest{
			Name:         "Read",
			Frequency:    "daily",
			ReminderTime: "21:00",
		})

		w := doJSON(t, router, http.MethodPatch, "/v1/habits/"+dto.ID, UpdateHabitRequest{
			UpdateMask: []string{domain.FieldFrequency},
			Frequency:  ptr.To("custom"),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListAndDeleteEndpoints(t *testing.T) {
	now := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)
	router := newTestRouter(t, newMemRepo(), now)

	a := createHabit(t, router, CreateHabitRequest{Name: "A", Frequency: "daily", ReminderTime: "07:00"})
	b := createHabit(t, router, CreateHabitRequest{Name: "B", Frequency: "weekly", ReminderTime: "09:00"})

	// Deactivate one habit.
	w := doJSON(t, router, http.MethodPatch, "/v1/habits/"+b.ID, UpdateHabitRequest{
		UpdateMask: []string{domain.FieldIsActive},
		IsActive:   ptr.To(false),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Habits []HabitDTO `json:"habits"`
	}

	w = doJSON(t, router, http.MethodGet, "/v1/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Habits, 2)

	w = doJSON(t, router, http.MethodGet, "/v1/habits?active_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Habits, 1)
	assert.Equal(t, a.ID, list.Habits[0].ID)

	w = doJSON(t, router, http.MethodDelete, "/v1/habits/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/habits/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpcomingRemindersEndpoint(t *testing.T) {
	now := time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC)
	router := newTestRouter(t, newMemRepo(), now)

	dto := createHabit(t, router, CreateHabitRequest{
		Name:         "Stretch",
		Frequency:    "daily",
		ReminderTime: "07:00",
	})

	t.Run("hours window", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/reminders/upcoming?hours=4", nil)
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

		var resp struct {
			Reminders []ReminderDTO `json:"reminders"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Reminders, 1)
		assert.Equal(t, dto.ID, resp.Reminders[0].HabitID)
		assert.Equal(t, time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC), resp.Reminders[0].OccurrenceAt.UTC())
		assert.InDelta(t, 60.0, resp.Reminders[0].MinutesUntil, 0.01)
	})

	t.Run("invalid hours", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/reminders/upcoming?hours=soon", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMissingAuthenticatedUser(t *testing.T) {
	svc := habit.NewService(newMemRepo(), staticTZ{time.UTC}, habit.Config{})
	h := NewHabitHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/habits", nil)
	w := httptest.NewRecorder()
	h.ListHabits(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
