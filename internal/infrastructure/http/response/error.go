package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/stride/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{
				{Field: field, Issue: issue},
			},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Unauthorized sends a 401 Unauthorized error.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, "UNAUTHORIZED", message, http.StatusUnauthorized)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// UnprocessableEntity sends a 422 error for well-formed requests the engine
// rejects on business grounds.
func UnprocessableEntity(w http.ResponseWriter, code, message string) {
	Error(w, code, message, http.StatusUnprocessableEntity)
}

// InternalError sends a 500 Internal Server Error. The actual error is logged
// server-side; the client gets a generic message to prevent information
// disclosure.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "internal server error", "error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrNameRequired):
		ValidationError(w, "name", "required field missing")
	case errors.Is(err, domain.ErrNameTooLong):
		ValidationError(w, "name", "must be 120 characters or less")
	case errors.Is(err, domain.ErrInvalidSchedule):
		ValidationError(w, "frequency", err.Error())
	case errors.Is(err, domain.ErrInvalidReminderTime):
		ValidationError(w, "reminder_time", "must be HH:MM in 24-hour form")
	case errors.Is(err, domain.ErrInvalidID):
		ValidationError(w, "id", "invalid ID format")

	// Not found errors (404)
	case errors.Is(err, domain.ErrHabitNotFound):
		NotFound(w, "habit")

	// Business rejections (422)
	case errors.Is(err, domain.ErrScheduleMismatch):
		UnprocessableEntity(w, "SCHEDULE_MISMATCH", "habit is not scheduled for this day")

	// Auth errors (401)
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, "invalid or missing access token")

	// Concurrency errors (409)
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, domain.ErrConflict):
		Conflict(w, err.Error())

	// Unknown errors (500)
	default:
		InternalError(w, r, err)
	}
}
