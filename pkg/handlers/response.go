package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// RespondError maps a service error to its HTTP status and writes the error
// response. Unrecognized errors become 500s with the message withheld.
func RespondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		status int
		code   string
		msg    = err.Error()
	)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrValidation):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, apperrors.ErrNoEligibleProvider):
		status, code = http.StatusUnprocessableEntity, "no_eligible_provider"
	case errors.Is(err, apperrors.ErrProviderFailure):
		status, code = http.StatusBadGateway, "provider_failure"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
		msg = "internal error"
		logger.Error("request failed", zap.Error(err))
	}

	if err := ErrorResponse(w, status, code, msg); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
