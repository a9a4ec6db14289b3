package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorCounter records one error of the given type. metrics.HTTPMetrics
// implements it.
type ErrorCounter interface {
	ErrorReturned(errType string)
}

// Middleware converts errors returned by handlers into JSON responses.
// Echo's own HTTPErrors pass through to the default error handler.
func Middleware(counter ErrorCounter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				counter.ErrorReturned(string(WrapHTTPError(httpErr).Type))
				return err
			}

			structuredErr := AsStructuredError(err)
			counter.ErrorReturned(string(structuredErr.Type))
			logError(c, structuredErr)

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}
	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}
	if userID := c.Get("userID"); userID != nil {
		attrs = append(attrs, "user_id", userID)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case TypeValidation, TypeNotFound, TypeUnauthorized, TypeForbidden, TypeRateLimited:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case TypeConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Request failed", attrs...)
	}
}

// WrapHTTPError converts Echo's HTTPError to a structured error.
func WrapHTTPError(httpErr *echo.HTTPError) *Error {
	message := "internal server error"
	if msg, ok := httpErr.Message.(string); ok {
		message = msg
	}

	var errType ErrorType
	switch httpErr.Code {
	case http.StatusBadRequest:
		errType = TypeValidation
	case http.StatusUnauthorized:
		errType = TypeUnauthorized
	case http.StatusForbidden:
		errType = TypeForbidden
	case http.StatusNotFound:
		errType = TypeNotFound
	case http.StatusConflict:
		errType = TypeConflict
	case http.StatusTooManyRequests:
		errType = TypeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		errType = TypeExternal
	default:
		errType = TypeInternal
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   httpErr.Internal,
		Context: make(map[string]any),
	}
}
