package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/notecanvas/internal/domain"
)

type CalendarRepo struct {
	pool *pgxpool.Pool
}

var _ domain.CalendarRepository = (*CalendarRepo)(nil)

func NewCalendarRepo(pool *pgxpool.Pool) *CalendarRepo {
	return &CalendarRepo{pool: pool}
}

const calendarColumns = `id, user_id, date::text, text, created_at`

func scanCalendarNote(row pgx.CollectableRow) (domain.CalendarNote, error) {
	var n domain.CalendarNote
	err := row.Scan(&n.ID, &n.UserID, &n.Date, &n.Text, &n.CreatedAt)
	return n, err
}

func (r *CalendarRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.CalendarNote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+calendarColumns+` FROM calendar_notes WHERE user_id = $1 ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar notes: %w", err)
	}

	notes, err := pgx.CollectRows(rows, scanCalendarNote)
	if err != nil {
		return nil, fmt.Errorf("failed to scan calendar notes: %w", err)
	}
	return notes, nil
}

func (r *CalendarRepo) Add(ctx context.Context, userID uuid.UUID, date, text string) (*domain.CalendarNote, error) {
	rows, err := r.pool.Query(ctx,
		`INSERT INTO calendar_notes (user_id, date, text) VALUES ($1, $2::text::date, $3) RETURNING `+calendarColumns,
		userID, date, text)
	if err != nil {
		return nil, fmt.Errorf("failed to add calendar note: %w", err)
	}

	note, err := pgx.CollectExactlyOneRow(rows, scanCalendarNote)
	if err != nil {
		return nil, fmt.Errorf("failed to add calendar note: %w", err)
	}
	return &note, nil
}

func (r *CalendarRepo) Delete(ctx context.Context, userID uuid.UUID, noteID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete calendar note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCalendarNoteNotFound
	}
	return nil
}
