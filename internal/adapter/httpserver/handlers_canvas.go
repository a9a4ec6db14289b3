package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

// handleCanvasSocket hands the connection to the canvas handler. Once the
// upgrade has happened no HTTP response can be written, so errors are only
// logged.
func (s *Server) handleCanvasSocket(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := s.canvas.ServeCanvas(c.Response(), c.Request(), user.ID); err != nil {
		slog.WarnContext(c.Request().Context(), "Canvas socket failed", "user_id", user.ID, "error", err)
	}
	return nil
}
