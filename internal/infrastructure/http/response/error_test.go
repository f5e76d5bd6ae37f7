package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rezkam/stride/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "name required", err: domain.ErrNameRequired, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "name too long", err: domain.ErrNameTooLong, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "invalid schedule", err: domain.ErrInvalidSchedule, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "invalid reminder time", err: domain.ErrInvalidReminderTime, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "not found", err: domain.ErrHabitNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "schedule mismatch", err: domain.ErrScheduleMismatch, wantStatus: http.StatusUnprocessableEntity, wantCode: "SCHEDULE_MISMATCH"},
		{name: "unauthorized", err: domain.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "version conflict", err: domain.ErrVersionConflict, wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "retry exhaustion conflict", err: domain.ErrConflict, wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "unknown error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
		{
			name:       "wrapped errors unwrap to their sentinel",
			err:        fmt.Errorf("completing habit: %w", domain.ErrScheduleMismatch),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "SCHEDULE_MISMATCH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			FromDomainError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	InternalError(w, r, errors.New("pq: connection refused to 10.0.0.5"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Error.Message, "10.0.0.5")
}
