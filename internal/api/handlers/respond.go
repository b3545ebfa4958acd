package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// statusFor maps an error to its HTTP status and the message safe to return
func statusFor(err error) (int, string) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "internal server error"
	}

	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, appErr.Message
	case apperrors.ErrorTypeValidation:
		if appErr.Err != nil {
			return http.StatusBadRequest, appErr.Message + ": " + appErr.Err.Error()
		}
		return http.StatusBadRequest, appErr.Message
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict, appErr.Message
	case apperrors.ErrorTypeUnacknowledged:
		return http.StatusServiceUnavailable, appErr.Message
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway, appErr.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	respondWithError(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.WrapValidationError("invalid request body", err)
	}
	return nil
}
