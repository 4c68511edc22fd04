// Package apperror defines the application's error taxonomy.
//
// ERROR TAXONOMY:
// Every failure in the service layer is one of a small set of kinds:
//
//	ErrValidation → bad/missing caller input        → HTTP 400
//	ErrAuth       → missing/invalid/expired session → HTTP 401
//	ErrForbidden  → authenticated but not allowed   → HTTP 403
//	ErrNotFound   → entity id does not resolve      → HTTP 404
//	ErrConflict   → uniqueness violation            → HTTP 409
//	ErrUpstream   → Slack/directory call failed     → HTTP 500
//
// Services return these; the HTTP layer maps them to status codes in one
// place (handler.writeError). Raw errors from the HTTP client or database
// driver never cross the service boundary unwrapped.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrAuth       = errors.New("unauthorized")
	ErrUpstream   = errors.New("upstream error")
)

// AppError carries a taxonomy kind plus the details handlers need.
//
// Code is a short machine-readable reason (e.g. "invalid_state",
// "token_exchange_failed") used in login-redirect query params and JSON
// error bodies. When empty, writeError derives one from the kind.
type AppError struct {
	Err     error  // taxonomy sentinel (ErrNotFound, ErrAuth, ...)
	Message string // human-readable description
	Code    string // optional machine-readable reason
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for a missing or invalid session
// credential. code distinguishes "no_credential" from "invalid_credential".
func Unauthorized(code, message string) *AppError {
	return &AppError{
		Err:     ErrAuth,
		Message: message,
		Code:    code,
	}
}

// Upstream wraps a failure from an external service (Slack OAuth, the club
// directory API). cause may be nil when the provider reported a clean error
// code instead of failing at the transport level.
func Upstream(code, message string, cause error) *AppError {
	err := error(ErrUpstream)
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrUpstream, cause)
	}
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// CodeOf extracts the machine-readable reason from an error chain.
// Returns fallback when the error is not an *AppError or has no code set.
func CodeOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return fallback
}
