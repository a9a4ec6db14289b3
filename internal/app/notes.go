package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/pscheid92/notecanvas/internal/canvas"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

// Notes exposes the note store to the REST API. Interactive editing goes
// through canvas.Controller instead.
type Notes struct {
	store domain.NoteStore
}

func NewNotes(store domain.NoteStore) *Notes {
	return &Notes{store: store}
}

func (s *Notes) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Note, error) {
	return s.store.ListNotes(ctx, ownerID)
}

func (s *Notes) Create(ctx context.Context, ownerID uuid.UUID) (*domain.Note, error) {
	return s.store.CreateNote(ctx, canvas.NewDraft(ownerID, nil))
}

func (s *Notes) Update(ctx context.Context, ownerID uuid.UUID, noteID string, patch domain.NotePatch) error {
	if patch.IsEmpty() {
		return apperrors.ValidationError("nothing to update")
	}
	return s.store.UpdateNote(ctx, ownerID, noteID, patch)
}

func (s *Notes) Delete(ctx context.Context, ownerID uuid.UUID, noteID string) error {
	return s.store.DeleteNote(ctx, ownerID, noteID)
}
