package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rezkam/stride/internal/infrastructure/http/middleware"
	"github.com/rezkam/stride/internal/infrastructure/http/response"
)

// UpcomingReminders handles GET /v1/reminders/upcoming?hours=N.
// Occurrences are projected on demand from the caller's active habits; an
// omitted or non-positive hours parameter uses the configured default window.
func (h *HabitHandler) UpcomingReminders(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "missing authenticated user")
		return
	}

	var window time.Duration
	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "hours must be an integer")
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	now := h.now()
	occurrences, err := h.habits.UpcomingReminders(r.Context(), ownerID, now, window)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"reminders": MapOccurrencesToDTO(occurrences, now)})
}
