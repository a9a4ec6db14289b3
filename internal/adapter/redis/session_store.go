package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps sign-in sessions as JSON values that expire with the
// session itself.
type SessionStore struct {
	rdb   goredis.Cmdable
	clock clockwork.Clock
}

var _ domain.SessionStore = (*SessionStore)(nil)

func NewSessionStore(rdb goredis.Cmdable, clock clockwork.Clock) *SessionStore {
	return &SessionStore{rdb: rdb, clock: clock}
}

type sessionRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	ttl := session.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired at %s", session.ExpiresAt.Format(time.RFC3339))
	}

	data, err := json.Marshal(sessionRecord{UserID: session.UserID, ExpiresAt: session.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if !s.clock.Now().Before(record.ExpiresAt) {
		return nil, domain.ErrSessionNotFound
	}

	return &domain.Session{Token: token, UserID: record.UserID, ExpiresAt: record.ExpiresAt}, nil
}

// Delete is idempotent.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
