package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

func (s *Server) registerCalendarRoutes(api *echo.Group) {
	api.GET("/calendar", s.handleListCalendar)
	api.POST("/calendar", s.handleAddCalendarNote)
	api.DELETE("/calendar/:id", s.handleDeleteCalendarNote)
	api.GET("/calendar.ics", s.handleExportCalendar)
}

func (s *Server) handleListCalendar(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	notes, err := s.calendar.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := make([]calendarNoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toCalendarNoteResponse(n))
	}
	return sendJSON(c, http.StatusOK, resp)
}

type addCalendarNoteRequest struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

func (s *Server) handleAddCalendarNote(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req addCalendarNoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	note, err := s.calendar.Add(c.Request().Context(), user.ID, req.Date, req.Text)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusCreated, toCalendarNoteResponse(*note))
}

func (s *Server) handleDeleteCalendarNote(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return err
	}

	if err := s.calendar.Delete(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return sendNoContent(c)
}

// handleExportCalendar renders into a buffer first so a failing export still
// produces a JSON error instead of a truncated file.
func (s *Server) handleExportCalendar(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.calendar.ExportICS(c.Request().Context(), user.ID, &buf); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="notecanvas.ics"`)
	if err := c.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send calendar: %w", err)
	}
	return nil
}

func parseInt64Param(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError("invalid " + name).WithField(name, raw)
	}
	return id, nil
}
