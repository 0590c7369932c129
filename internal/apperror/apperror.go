// Package apperror defines the error taxonomy shared by services and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrAuthExchange        = errors.New("auth exchange failed")
	ErrTokenRefresh        = errors.New("token refresh failed")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// AppError carries a sentinel kind plus a human-readable message.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

func Validation(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func NotFound(resource, id string) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// AuthExchange wraps a provider failure during the OAuth code exchange.
// These propagate to the caller so the client can prompt a reconnect.
func AuthExchange(provider string, cause error) *AppError {
	return &AppError{Err: ErrAuthExchange, Message: fmt.Sprintf("%s code exchange failed: %v", provider, cause)}
}

// TokenRefresh wraps a provider rejection of a refresh token.
func TokenRefresh(provider string, cause error) *AppError {
	return &AppError{Err: ErrTokenRefresh, Message: fmt.Sprintf("%s token refresh failed: %v", provider, cause)}
}

// ProviderUnavailable wraps a network or provider-side failure during listing.
func ProviderUnavailable(provider string, cause error) *AppError {
	return &AppError{Err: ErrProviderUnavailable, Message: fmt.Sprintf("%s unavailable: %v", provider, cause)}
}
