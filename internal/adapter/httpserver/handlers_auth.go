package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

func (s *Server) registerAuthRoutes(rateLimiter echo.MiddlewareFunc) {
	auth := s.echo.Group("/auth", rateLimiter)
	auth.POST("/signup", s.handleSignUp)
	auth.POST("/signin", s.handleSignIn)
	auth.POST("/signout", s.handleSignOut)
}

func (s *Server) registerAccountRoutes(api *echo.Group) {
	api.GET("/me", s.handleMe)
	api.PATCH("/me", s.handleUpdateMe)
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleSignUp(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	ctx := c.Request().Context()
	if _, err := s.identity.SignUp(ctx, req.Email, req.Password, req.DisplayName); err != nil {
		return err
	}

	return s.startSession(c, req.Email, req.Password, http.StatusCreated)
}

func (s *Server) handleSignIn(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	return s.startSession(c, req.Email, req.Password, http.StatusOK)
}

// startSession signs in and stores the token in a fresh cookie session, so a
// session ID planted before sign-in is never reused.
func (s *Server) startSession(c echo.Context, email, password string, status int) error {
	ctx := c.Request().Context()

	session, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	user, err := s.identity.CurrentSession(ctx, session.Token)
	if err != nil {
		return apperrors.InternalError("failed to load signed-in user", err)
	}

	cookie, err := s.sessionStore.New(c.Request(), sessionName)
	if err != nil {
		slog.DebugContext(ctx, "Discarding unreadable session cookie", "error", err)
	}
	cookie.Values[sessionKeyToken] = session.Token
	if err := cookie.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	slog.InfoContext(ctx, "User signed in", "user_id", user.ID)
	return sendJSON(c, status, s.userResponse(user))
}

func (s *Server) handleSignOut(c echo.Context) error {
	ctx := c.Request().Context()

	if token := s.sessionToken(c); token != "" {
		if err := s.identity.SignOut(ctx, token); err != nil {
			slog.WarnContext(ctx, "Failed to delete session", "error", err)
		}
	}

	cookie, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		cookie, err = s.sessionStore.New(c.Request(), sessionName)
		if err != nil {
			return apperrors.InternalError("failed to create session during sign-out", err)
		}
	}
	cookie.Options.MaxAge = -1
	if err := cookie.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to clear session", err)
	}

	return sendNoContent(c)
}

func (s *Server) handleMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, s.userResponse(user))
}

type updateMeRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Server) handleUpdateMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	updated, err := s.identity.UpdateDisplayName(c.Request().Context(), user.ID, req.DisplayName)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, s.userResponse(updated))
}

func (s *Server) userResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     s.tiers != nil && s.tiers.IsAdmin(u),
	}
}
