// Package api implements the JSON API consumed by the web and mobile clients.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/k7labs/k7notes/internal/apperror"
	httperrors "github.com/k7labs/k7notes/internal/http/errors"
)

// ErrorResponse is the standard error shape returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps a domain error to an HTTP status. Unknown errors become a
// generic 500 with the cause logged server-side only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		code := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status, code = http.StatusBadRequest, "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status, code = http.StatusNotFound, "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status, code = http.StatusConflict, "conflict"
		case errors.Is(err, apperror.ErrAuthExchange):
			status, code = http.StatusBadGateway, "auth_exchange_failed"
		case errors.Is(err, apperror.ErrTokenRefresh):
			status, code = http.StatusBadGateway, "token_refresh_failed"
		case errors.Is(err, apperror.ErrProviderUnavailable):
			status, code = http.StatusBadGateway, "provider_unavailable"
		}

		if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
			httperrors.LogError(r, "api error", err)
		}
		writeJSON(w, status, ErrorResponse{Error: code, Message: appErr.Message, Field: appErr.Field})
		return
	}

	httperrors.LogError(r, "unexpected api error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation("body", "invalid JSON request body")
	}
	return nil
}
