package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	response.RespondJSON(w, status, data)
}

// errorStatus maps a service error to its HTTP status.
// Source errors are upstream failures (502): the sheet is unreachable or its
// layout no longer matches what the dashboard reads.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidThreshold),
		errors.Is(err, apperrors.ErrInvalidLimit),
		errors.Is(err, apperrors.ErrInvalidUUID):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrSourceUnavailable),
		errors.Is(err, apperrors.ErrInvalidCSVHeaders),
		errors.Is(err, apperrors.ErrDuplicateCSVHeader),
		errors.Is(err, apperrors.ErrEmptyExport),
		errors.Is(err, apperrors.ErrReservedCustomerLabel):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status chosen by errorStatus.
// Not-found responses carry a fixed message since no snapshot exists yet.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	status := errorStatus(err)
	if status == http.StatusNotFound {
		response.RespondError(w, status, "no dashboard snapshot available", err.Error())
		return
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(message)
	}
	response.RespondError(w, status, message, err.Error())
}
