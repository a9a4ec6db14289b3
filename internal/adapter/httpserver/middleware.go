package httpserver

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/domain"
	"github.com/pscheid92/notecanvas/internal/platform/correlation"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

// Context keys set by requireAuth.
const (
	ctxKeyUser   = "user"
	ctxKeyUserID = "userID"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		c.Response().Header().Set(correlation.Header, id)
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// requireAuth resolves the session cookie to a user. Any failure, including
// an unreachable session store, is reported as unauthorized.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := s.sessionToken(c)
		if token == "" {
			return apperrors.UnauthorizedError("unauthorized")
		}

		user, err := s.identity.CurrentSession(c.Request().Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrUserNotFound) {
				slog.WarnContext(c.Request().Context(), "Session lookup failed", "error", err)
			}
			return apperrors.UnauthorizedError("unauthorized")
		}

		c.Set(ctxKeyUser, user)
		c.Set(ctxKeyUserID, user.ID)
		return next(c)
	}
}

func (s *Server) sessionToken(c echo.Context) string {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionKeyToken].(string)
	return token
}

// currentUser returns the user stored by requireAuth.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(ctxKeyUser).(*domain.User)
	if !ok || user == nil {
		return nil, apperrors.InternalError("missing user in context", nil)
	}
	return user, nil
}
