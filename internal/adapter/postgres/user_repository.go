package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/notecanvas/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// userColumns must match the Scan order in scanUser.
const userColumns = `id, email, display_name, password_hash, created_at, updated_at`

func scanUser(row pgx.CollectableRow) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepo) Create(ctx context.Context, email, displayName, passwordHash string) (*domain.User, error) {
	rows, err := r.pool.Query(ctx,
		`INSERT INTO users (email, display_name, password_hash) VALUES ($1, $2, $3) RETURNING `+userColumns,
		strings.ToLower(email), displayName, passwordHash)
	if err == nil {
		var user domain.User
		user, err = pgx.CollectExactlyOneRow(rows, scanUser)
		if err == nil {
			return &user, nil
		}
	}
	if pgErrorCode(err) == pgUniqueViolation {
		return nil, domain.ErrEmailTaken
	}
	return nil, fmt.Errorf("failed to create user: %w", err)
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// GetByEmail matches case-insensitively; emails are stored lower-cased.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET display_name = $2, updated_at = now() WHERE id = $1`, userID, displayName)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
