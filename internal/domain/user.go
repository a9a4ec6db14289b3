package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	Create(ctx context.Context, email, displayName, passwordHash string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) error
}

// IdentityService is the authentication boundary used by the HTTP layer.
type IdentityService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*User, error)
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) (*User, error)
}
