// Package errors provides structured errors with HTTP status mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pscheid92/notecanvas/internal/domain"
)

// ErrorType is the category of an error, used for metrics and responses.
type ErrorType string

const (
	TypeValidation   ErrorType = "validation"   // 400
	TypeUnauthorized ErrorType = "unauthorized" // 401
	TypeForbidden    ErrorType = "forbidden"    // 403
	TypeNotFound     ErrorType = "not_found"    // 404
	TypeConflict     ErrorType = "conflict"     // 409
	TypeRateLimited  ErrorType = "rate_limited" // 429
	TypeInternal     ErrorType = "internal"     // 500
	TypeExternal     ErrorType = "external"     // 502
)

// Error is a structured error with type, message and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause, Context: make(map[string]any)}
}

func ValidationError(message string) *Error { return newError(TypeValidation, message, nil) }

func UnauthorizedError(message string) *Error { return newError(TypeUnauthorized, message, nil) }

func ForbiddenError(message string) *Error { return newError(TypeForbidden, message, nil) }

func NotFoundError(message string) *Error { return newError(TypeNotFound, message, nil) }

func ConflictError(message string) *Error { return newError(TypeConflict, message, nil) }

func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// WithField adds a context field (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON body sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error. Known domain
// sentinels map to their client-facing type; anything else is internal.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrSessionNotFound):
		return UnauthorizedError("invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		return ForbiddenError("forbidden")
	case errors.Is(err, domain.ErrEmailTaken):
		return ConflictError("email already registered")
	case errors.Is(err, domain.ErrNoteNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCalendarNoteNotFound),
		errors.Is(err, domain.ErrFoodEntryNotFound),
		errors.Is(err, domain.ErrCustomFoodNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrFoodItemNotFound):
		return NotFoundError(err.Error())
	}

	return InternalError("internal server error", err)
}
