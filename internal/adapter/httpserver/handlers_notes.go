package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

func (s *Server) registerNoteRoutes(api *echo.Group) {
	api.GET("/notes", s.handleListNotes)
	api.POST("/notes", s.handleCreateNote)
	api.PATCH("/notes/:id", s.handleUpdateNote)
	api.DELETE("/notes/:id", s.handleDeleteNote)
}

func (s *Server) handleListNotes(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	notes, err := s.notes.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}
	return sendJSON(c, http.StatusOK, resp)
}

func (s *Server) handleCreateNote(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	note, err := s.notes.Create(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusCreated, toNoteResponse(*note))
}

// updateNoteRequest is a partial update; x and y travel together.
type updateNoteRequest struct {
	Content *string  `json:"content"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
}

func (r updateNoteRequest) patch() (domain.NotePatch, error) {
	patch := domain.NotePatch{Content: r.Content}
	switch {
	case r.X != nil && r.Y != nil:
		patch.Position = &domain.Position{X: *r.X, Y: *r.Y}
	case r.X != nil || r.Y != nil:
		return domain.NotePatch{}, apperrors.ValidationError("x and y must be given together")
	}
	return patch, nil
}

func (s *Server) handleUpdateNote(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateNoteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	patch, err := req.patch()
	if err != nil {
		return err
	}

	if err := s.notes.Update(c.Request().Context(), user.ID, c.Param("id"), patch); err != nil {
		return err
	}
	return sendNoContent(c)
}

func (s *Server) handleDeleteNote(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := s.notes.Delete(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return err
	}
	return sendNoContent(c)
}
