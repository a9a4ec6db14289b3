package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
	"golang.org/x/sync/singleflight"
)

const (
	minPasswordLength    = 8
	maxDisplayNameLength = 50
	sessionTokenBytes    = 32
)

// AuthRecorder counts identity operations. metrics.AuthMetrics implements it.
type AuthRecorder interface {
	Attempt(operation string, err error)
}

type nopAuthRecorder struct{}

func (nopAuthRecorder) Attempt(string, error) {}

// Identity implements domain.IdentityService on top of the user repository
// and the session store.
type Identity struct {
	users      domain.UserRepository
	sessions   domain.SessionStore
	clock      clockwork.Clock
	sessionTTL time.Duration
	recorder   AuthRecorder
	lookups    singleflight.Group

	// Verified against when the email is unknown, so both paths cost a hash.
	dummyHash string
}

var _ domain.IdentityService = (*Identity)(nil)

func NewIdentity(users domain.UserRepository, sessions domain.SessionStore, clock clockwork.Clock, sessionTTL time.Duration, recorder AuthRecorder) (*Identity, error) {
	dummy, err := HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = nopAuthRecorder{}
	}
	return &Identity{
		users:      users,
		sessions:   sessions,
		clock:      clock,
		sessionTTL: sessionTTL,
		recorder:   recorder,
		dummyHash:  dummy,
	}, nil
}

func (s *Identity) SignUp(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	user, err := s.signUp(ctx, email, password, displayName)
	s.recorder.Attempt("signup", err)
	return user, err
}

func (s *Identity) signUp(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.ValidationError("invalid email address")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apperrors.ValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, email, displayName, hash)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "User signed up", "user_id", user.ID)
	return user, nil
}

// SignIn returns a fresh session. Unknown email and wrong password both
// yield domain.ErrInvalidCredentials.
func (s *Identity) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.signIn(ctx, email, password)
	s.recorder.Attempt("signin", err)
	return session, err
}

func (s *Identity) signIn(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		_, _ = VerifyPassword(password, s.dummyHash)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		slog.ErrorContext(ctx, "Stored password hash is unreadable", "user_id", user.ID, "error", err)
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	session := domain.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: s.clock.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	slog.InfoContext(ctx, "User signed in", "user_id", user.ID)
	return &session, nil
}

func (s *Identity) SignOut(ctx context.Context, token string) error {
	err := s.sessions.Delete(ctx, token)
	s.recorder.Attempt("signout", err)
	return err
}

// CurrentSession resolves a session token to its user. Concurrent lookups of
// the same token share one round trip.
func (s *Identity) CurrentSession(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	// The lookup is shared, so one caller going away must not fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.lookups.Do(token, func() (any, error) {
		session, err := s.sessions.Get(shared, token)
		if err != nil {
			return nil, err
		}
		if !s.clock.Now().Before(session.ExpiresAt) {
			return nil, domain.ErrSessionNotFound
		}

		user, err := s.users.GetByID(shared, session.UserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return user, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

func (s *Identity) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) (*domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := s.users.UpdateDisplayName(ctx, userID, displayName); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func validateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxDisplayNameLength {
		return apperrors.ValidationError(fmt.Sprintf("display name must be 1-%d characters", maxDisplayNameLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
