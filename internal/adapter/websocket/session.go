package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pscheid92/notecanvas/internal/domain"
)

// canvasController is the part of canvas.Controller a socket session drives.
type canvasController interface {
	Create(ctx context.Context) (domain.NoteSnapshot, error)
	ContentChanged(noteID, content string) error
	DragStart(noteID string, pointerX, pointerY float64) error
	DragMove(pointerX, pointerY float64) error
	DragEnd() error
	Save(ctx context.Context, noteID string) error
	Delete(ctx context.Context, noteID string) error
}

// session translates inbound socket events into controller calls. Calls that
// wait on the store run on their own goroutine so the read loop keeps
// accepting keystrokes and pointer moves.
type session struct {
	ctx  context.Context
	ctrl canvasController
	emit func(event any)
	wg   sync.WaitGroup
}

func newSession(ctx context.Context, ctrl canvasController, emit func(event any)) *session {
	return &session{ctx: ctx, ctrl: ctrl, emit: emit}
}

func (s *session) handle(evt inboundEvent) {
	switch evt.Type {
	case eventCreate:
		s.async(func() {
			snap, err := s.ctrl.Create(s.ctx)
			if err != nil {
				s.fail("", "create", err)
				return
			}
			s.emit(noteEvent{Type: eventCreated, Note: toNoteDTO(snap)})
		})
	case eventContent:
		if err := s.ctrl.ContentChanged(evt.NoteID, evt.Content); err != nil {
			s.fail(evt.NoteID, evt.Type, err)
		}
	case eventDragStart:
		if err := s.ctrl.DragStart(evt.NoteID, evt.X, evt.Y); err != nil {
			s.fail(evt.NoteID, evt.Type, err)
		}
	case eventDragMove:
		if err := s.ctrl.DragMove(evt.X, evt.Y); err != nil {
			s.fail("", evt.Type, err)
		}
	case eventDragEnd:
		if err := s.ctrl.DragEnd(); err != nil {
			s.fail("", evt.Type, err)
		}
	case eventSave:
		s.async(func() {
			if err := s.ctrl.Save(s.ctx, evt.NoteID); err != nil {
				s.fail(evt.NoteID, eventSave, err)
			}
		})
	case eventDelete:
		s.async(func() {
			if err := s.ctrl.Delete(s.ctx, evt.NoteID); err != nil {
				s.fail(evt.NoteID, eventDelete, err)
				return
			}
			s.emit(noteRefEvent{Type: eventDeleted, NoteID: evt.NoteID})
		})
	default:
		s.emit(errorEvent{Type: eventError, Message: "unknown event type"})
	}
}

func (s *session) async(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// wait blocks until every in-progress create, save and delete has returned.
func (s *session) wait() {
	s.wg.Wait()
}

func (s *session) fail(noteID, op string, err error) {
	if errors.Is(err, domain.ErrControllerClosed) || errors.Is(err, context.Canceled) {
		return
	}
	slog.WarnContext(s.ctx, "canvas event failed", "op", op, "note_id", noteID, "error", err)
	s.emit(errorEvent{Type: eventError, NoteID: noteID, Message: errorMessage(op, err)})
}

func errorMessage(op string, err error) string {
	if errors.Is(err, domain.ErrNoteNotFound) {
		return "note not found"
	}
	switch op {
	case eventCreate:
		return "could not create note"
	case eventSave:
		return "could not save note"
	case eventDelete:
		return "could not delete note"
	default:
		return "request failed"
	}
}
