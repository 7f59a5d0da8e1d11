package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
// Details carries enough context (field, entity, expected state) for the
// calling layer to render a specific message instead of a generic failure.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithDetail returns a copy of the AppError with an extra detail entry.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cpy.Details[k] = v
	}
	cpy.Details[key] = value
	return &cpy
}

// Error codes for the engagement lifecycle taxonomy. All domain kinds are
// terminal to the calling operation; none are retried internally.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeConflict      = "CONFLICT"
	CodeNotFound      = "NOT_FOUND"
	CodeState         = "STATE_ERROR"
	CodeExpired       = "EXPIRED"
	CodeAuthorization = "FORBIDDEN"
)

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       CodeAuthorization,
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       CodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewValidation reports malformed or missing caller input on a specific field.
func NewValidation(field, message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    map[string]any{"field": field},
	}
}

// NewConflict reports a uniqueness violation on a single-create path.
func NewConflict(entity, message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
		Details:    map[string]any{"entity": entity},
	}
}

// NewNotFound reports an absent entity or one not owned by the caller.
func NewNotFound(entity, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		StatusCode: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewState reports an operation that is illegal from the entity's current
// lifecycle state. Expected lists the states the operation would accept.
func NewState(entity, current string, expected ...string) *AppError {
	return &AppError{
		Code:       CodeState,
		Message:    fmt.Sprintf("%s is in state %q", entity, current),
		StatusCode: http.StatusConflict,
		Details: map[string]any{
			"entity":   entity,
			"current":  current,
			"expected": expected,
		},
	}
}

// NewExpired reports an invitation past its response window.
func NewExpired(entity, id string) *AppError {
	return &AppError{
		Code:       CodeExpired,
		Message:    fmt.Sprintf("%s has expired", entity),
		StatusCode: http.StatusGone,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewAuthorization reports an actor-role mismatch for a gated action.
func NewAuthorization(action, requiredRole string) *AppError {
	return &AppError{
		Code:       CodeAuthorization,
		Message:    fmt.Sprintf("action %q requires role %s", action, requiredRole),
		StatusCode: http.StatusForbidden,
		Details:    map[string]any{"action": action, "required_role": requiredRole},
	}
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr == nil {
		return false
	}
	return appErr.Code == code
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}
