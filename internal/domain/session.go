package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// SessionStore keeps sign-in sessions. Expired sessions are reported as
// ErrSessionNotFound.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
