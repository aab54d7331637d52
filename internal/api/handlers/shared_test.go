package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
)

// TestRespondJSON tests the respondJSON helper function.
// This is an internal test (package handlers, not handlers_test) because
// respondJSON is unexported.
func TestRespondJSON(t *testing.T) {
	t.Run("sets content-type and status code correctly", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondJSON(w, http.StatusOK, map[string]string{"message": "success"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("handles nil data without error", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondJSON(w, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("handles un-encodable data gracefully", func(t *testing.T) {
		w := httptest.NewRecorder()

		// Channels cannot be JSON encoded
		respondJSON(w, http.StatusOK, map[string]any{"channel": make(chan int)})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})
}

// TestErrorStatus tests the mapping from service errors to HTTP statuses.
//
// WHY: The frontend tells "nothing computed yet" (404), "bad filter" (400) and
// "the sheet is broken" (502) apart by status alone. Wrapped errors must map
// the same as the bare sentinels.
func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.ErrSnapshotNotFound, http.StatusNotFound},
		{apperrors.ErrInvalidThreshold, http.StatusBadRequest},
		{apperrors.ErrInvalidLimit, http.StatusBadRequest},
		{apperrors.ErrInvalidUUID, http.StatusBadRequest},
		{apperrors.ErrSourceUnavailable, http.StatusBadGateway},
		{apperrors.ErrInvalidCSVHeaders, http.StatusBadGateway},
		{apperrors.ErrDuplicateCSVHeader, http.StatusBadGateway},
		{apperrors.ErrEmptyExport, http.StatusBadGateway},
		{apperrors.ErrReservedCustomerLabel, http.StatusBadGateway},
		{apperrors.ErrFailedToSaveSnapshot, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
			wrapped := fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshDashboard, tt.err)
			if tt.want != http.StatusInternalServerError {
				assert.Equal(t, tt.want, errorStatus(wrapped))
			}
		})
	}
}

func TestRespondServiceError(t *testing.T) {
	w := httptest.NewRecorder()

	respondServiceError(w, "failed to refresh dashboard",
		fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshDashboard, apperrors.ErrSourceUnavailable))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body response.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "failed to refresh dashboard", body.Error)
	assert.Contains(t, body.Details, "spreadsheet export unavailable")
}
