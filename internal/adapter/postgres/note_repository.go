package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/notecanvas/internal/domain"
)

// NoteRepo implements domain.NoteStore.
type NoteRepo struct {
	pool *pgxpool.Pool
}

var _ domain.NoteStore = (*NoteRepo)(nil)

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

const noteColumns = `id, user_id, content, color, x, y, created_at`

func scanNote(row pgx.CollectableRow) (domain.Note, error) {
	var n domain.Note
	var id uuid.UUID
	err := row.Scan(&id, &n.OwnerID, &n.Content, &n.Color, &n.Position.X, &n.Position.Y, &n.CreatedAt)
	n.ID = id.String()
	return n, err
}

func (r *NoteRepo) ListNotes(ctx context.Context, ownerID uuid.UUID) ([]domain.Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes, err := pgx.CollectRows(rows, scanNote)
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepo) CreateNote(ctx context.Context, note domain.NewNote) (*domain.Note, error) {
	rows, err := r.pool.Query(ctx,
		`INSERT INTO notes (user_id, content, color, x, y) VALUES ($1, $2, $3, $4, $5) RETURNING `+noteColumns,
		note.OwnerID, note.Content, note.Color, note.Position.X, note.Position.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, scanNote)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &created, nil
}

// UpdateNote applies only the fields present in the patch.
func (r *NoteRepo) UpdateNote(ctx context.Context, ownerID uuid.UUID, noteID string, patch domain.NotePatch) error {
	id, err := uuid.Parse(noteID)
	if err != nil {
		return domain.ErrNoteNotFound
	}

	var x, y *float64
	if patch.Position != nil {
		x, y = &patch.Position.X, &patch.Position.Y
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE notes SET
			content = COALESCE($3, content),
			x = COALESCE($4, x),
			y = COALESCE($5, y),
			updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		id, ownerID, patch.Content, x, y)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepo) DeleteNote(ctx context.Context, ownerID uuid.UUID, noteID string) error {
	id, err := uuid.Parse(noteID)
	if err != nil {
		return domain.ErrNoteNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
