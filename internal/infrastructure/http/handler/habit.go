package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rezkam/stride/internal/application/habit"
	"github.com/rezkam/stride/internal/domain"
	"github.com/rezkam/stride/internal/infrastructure/http/middleware"
	"github.com/rezkam/stride/internal/infrastructure/http/response"
)

// CreateHabitRequest is the payload for POST /v1/habits.
type CreateHabitRequest struct {
	Name         string  `json:"name"`
	Frequency    string  `json:"frequency"`
	Weekdays     []int   `json:"weekdays,omitempty"`
	ReminderTime string  `json:"reminder_time"`
	RoutineID    *string `json:"routine_id,omitempty"`
}

// CreateHabit handles POST /v1/habits.
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authenticated user")
		return
	}

	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	created, err := h.habits.Create(r.Context(), habit.CreateParams{
		OwnerID:      ownerID,
		Name:         req.Name,
		Frequency:    req.Frequency,
		Weekdays:     req.Weekdays,
		ReminderTime: req.ReminderTime,
		RoutineID:    req.RoutineID,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "habit created",
		"habit_id", created.ID,
		"frequency", created.Frequency.String())

	response.Created(w, map[string]any{"habit": MapHabitToDTO(created)})
}

// ListHabits handles GET /v1/habits?active_only=true.
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authenticated user")
		return
	}

	activeOnly := r.URL.Query().Get("active_only") == "true"

	habits, err := h.habits.List(r.Context(), ownerID, activeOnly)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	dtos := make([]HabitDTO, 0, len(habits))
	for _, hb := range habits {
		dtos = append(dtos, MapHabitToDTO(hb))
	}
	response.OK(w, map[string]any{"habits": dtos})
}

// GetHabit handles GET /v1/habits/{habit_id}.
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authenticated user")
		return
	}

	hb, err := h.habits.Get(r.Context(), chi.URLParam(r, "habit_id"), ownerID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, map[string]any{"habit": MapHabitToDTO(hb)})
}

// UpdateHabitRequest is the payload for PATCH /v1/habits/{habit_id}.
// Only fields named in update_mask are applied.
type UpdateHabitRequest struct {
	UpdateMask   []string `json:"update_mask"`
	Etag         *string  `json:"etag,omitempty"`
	Name         *string  `json:"name,omitempty"`
	Frequency    *string  `json:"frequency,omitempty"`
	Weekdays     []int    `json:"weekdays,omitempty"`
	ReminderTime *string  `json:"reminder_time,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
	RoutineID    *string  `json:"routine_id,omitempty"`
}

// UpdateHabit handles PATCH /v1/habits/{habit_id}.
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authenticated user")
		return
	}

	var req UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if len(req.UpdateMask) == 0 {
		response.BadRequest(w, "update_mask is required")
		return
	}

	params := domain.UpdateHabitParams{
		HabitID:    chi.URLParam(r, "habit_id"),
		OwnerID:    ownerID,
		Etag:       req.Etag,
		UpdateMask: req.UpdateMask,
		Name:       req.Name,
		IsActive:   req.IsActive,
		RoutineID:  req.RoutineID,
	}

	// A frequency edit is validated through the closed variant constructor,
	// so invalid weekday combinations never reach storage.
	if req.Frequency != nil {
		freq, err := domain.NewFrequency(*req.Frequency, req.Weekdays)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		params.Frequency = &freq
	}

	if req.ReminderTime != nil {
		rt, err := domain.ParseReminderTime(*req.ReminderTime)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		params.ReminderTime = &rt
	}

	updated, err := h.habits.Update(r.Context(), params)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "habit updated",
		"habit_id", updated.ID,
		"fields", req.UpdateMask)

	response.OK(w, map[string]any{"habit": MapHabitToDTO(updated)})
}

// DeleteHabit handles DELETE /v1/habits/{habit_id}.
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authenticated user")
		return
	}

	if err := h.habits.Delete(r.Context(), chi.URLParam(r, "habit_id"), ownerID); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "habit deleted", "habit_id", chi.URLParam(r, "habit_id"))
	response.NoContent(w)
}

// CompleteHabitResponse carries the updated habit together with its
// completion outcome; the milestone flag never travels separately from the
// habit it belongs to.
type CompleteHabitResponse struct {
	Habit                 HabitDTO `json:"habit"`
	StreakMilestone       bool     `json:"streak_milestone"`
	AlreadyCompletedToday bool     `json:"already_completed_today"`
}

// CompleteHabit handles POST /v1/habits/{habit_id}/complete.
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authenticated user")
		return
	}
	habitID := chi.URLParam(r, "habit_id")

	result, err := h.habits.Complete(r.Context(), habitID, ownerID, h.now())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to complete habit",
			"habit_id", habitID,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "habit completed",
		"habit_id", habitID,
		"current_streak", result.Habit.CurrentStreak,
		"milestone", result.Milestone,
		"already_completed", result.AlreadyCompleted)

	response.OK(w, CompleteHabitResponse{
		Habit:                 MapHabitToDTO(result.Habit),
		StreakMilestone:       result.Milestone,
		AlreadyCompletedToday: result.AlreadyCompleted,
	})
}
