package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Palette is the fixed set of colours a new note is painted with.
var Palette = []string{"#ffd97d", "#ff9b9b", "#c9e4de", "#c4b5fd", "#ffc6ff"}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Note struct {
	ID        string
	OwnerID   uuid.UUID
	Content   string
	Color     string
	Position  Position
	CreatedAt time.Time
}

// NewNote carries the fields of a note that does not have an ID yet.
type NewNote struct {
	OwnerID  uuid.UUID
	Content  string
	Color    string
	Position Position
}

// NotePatch is a partial update. Nil fields are left untouched.
type NotePatch struct {
	Content  *string
	Position *Position
}

func (p NotePatch) IsEmpty() bool {
	return p.Content == nil && p.Position == nil
}

// Kind names the fields carried by the patch, for logs and metrics.
func (p NotePatch) Kind() string {
	switch {
	case p.Content != nil && p.Position != nil:
		return "content_position"
	case p.Content != nil:
		return "content"
	case p.Position != nil:
		return "position"
	default:
		return "empty"
	}
}

// NoteStore is the record store for canvas notes. Every call is scoped to the
// owner; rows of other users behave as if they did not exist.
type NoteStore interface {
	ListNotes(ctx context.Context, ownerID uuid.UUID) ([]Note, error)
	CreateNote(ctx context.Context, note NewNote) (*Note, error)
	UpdateNote(ctx context.Context, ownerID uuid.UUID, noteID string, patch NotePatch) error
	DeleteNote(ctx context.Context, ownerID uuid.UUID, noteID string) error
}
