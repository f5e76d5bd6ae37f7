// Package handler exposes the habit engine over JSON/HTTP. Handlers decode a
// request, hand typed parameters to the service, and map domain errors
// through the response package; no business logic lives here.
package handler

import (
	"time"

	"github.com/rezkam/stride/internal/application/habit"
)

// HabitHandler serves the habit API routes.
type HabitHandler struct {
	habits *habit.Service
	now    func() time.Time
}

// NewHabitHandler creates the handler set around the habit service.
func NewHabitHandler(habits *habit.Service) *HabitHandler {
	return &HabitHandler{
		habits: habits,
		now:    time.Now,
	}
}
