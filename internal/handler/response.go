// Package handler translates HTTP requests into service calls and service
// results into the JSON envelope the front-end expects:
//
//	{"success": true, ...payload}
//	{"success": false, "message": "..."}
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/habit-tracker/internal/apperror"
)

// maxBodyBytes caps JSON request bodies. A full habit save with a year of
// completions is well under this.
const maxBodyBytes = 1 << 20

// Response is the envelope for replies without a payload.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeOK(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// writeError maps domain errors to their status and message. Anything that
// is not an *apperror.AppError is logged and answered with 500 and
// fallback, so raw error text never reaches the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error, fallback string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrDuplicateEmail):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrInvalidCredentials), errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, status, Response{Success: false, Message: appErr.Message})
			return
		}
	}

	logger.Error(fallback,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, Response{Success: false, Message: fallback})
}

// decodeJSON reads a size-limited JSON body into v. Malformed input comes
// back as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.ValidationFailed("", fmt.Sprintf("Request body must be %d bytes or less", maxErr.Limit))
		}
		return apperror.ValidationFailed("", "Invalid request body")
	}
	return nil
}
