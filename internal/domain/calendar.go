package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of calendar and food dates.
const DateLayout = "2006-01-02"

type CalendarNote struct {
	ID        int64
	UserID    uuid.UUID
	Date      string
	Text      string
	CreatedAt time.Time
}

type CalendarRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]CalendarNote, error)
	Add(ctx context.Context, userID uuid.UUID, date, text string) (*CalendarNote, error)
	Delete(ctx context.Context, userID uuid.UUID, noteID int64) error
}
