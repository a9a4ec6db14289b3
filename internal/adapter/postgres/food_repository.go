package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/notecanvas/internal/domain"
)

type FoodRepo struct {
	pool *pgxpool.Pool
}

var _ domain.FoodRepository = (*FoodRepo)(nil)

func NewFoodRepo(pool *pgxpool.Pool) *FoodRepo {
	return &FoodRepo{pool: pool}
}

const (
	entryColumns      = `id, user_id, date::text, food_name, calories, protein, carbs, fat, created_at`
	customFoodColumns = `id, user_id, name, calories, protein, carbs, fat`
)

func scanEntry(row pgx.CollectableRow) (domain.FoodEntry, error) {
	var e domain.FoodEntry
	n := &e.Nutrients
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.FoodName, &n.Calories, &n.Protein, &n.Carbs, &n.Fat, &e.CreatedAt)
	return e, err
}

func scanCustomFood(row pgx.CollectableRow) (domain.CustomFood, error) {
	var f domain.CustomFood
	n := &f.Nutrients
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &n.Calories, &n.Protein, &n.Carbs, &n.Fat)
	return f, err
}

func (r *FoodRepo) ListEntries(ctx context.Context, userID uuid.UUID, date string) ([]domain.FoodEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM food_entries WHERE user_id = $1 AND date = $2::text::date ORDER BY created_at, id`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list food entries: %w", err)
	}
	return collectEntries(rows)
}

// ListAllEntries returns the full log, newest day first.
func (r *FoodRepo) ListAllEntries(ctx context.Context, userID uuid.UUID) ([]domain.FoodEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+` FROM food_entries WHERE user_id = $1 ORDER BY date DESC, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list food entries: %w", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]domain.FoodEntry, error) {
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to scan food entries: %w", err)
	}
	return entries, nil
}

func (r *FoodRepo) AddEntry(ctx context.Context, userID uuid.UUID, date, foodName string, n domain.Nutrients) (*domain.FoodEntry, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO food_entries (user_id, date, food_name, calories, protein, carbs, fat)
		VALUES ($1, $2::text::date, $3, $4, $5, $6, $7)
		RETURNING `+entryColumns,
		userID, date, foodName, n.Calories, n.Protein, n.Carbs, n.Fat)
	if err != nil {
		return nil, fmt.Errorf("failed to add food entry: %w", err)
	}

	entry, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to add food entry: %w", err)
	}
	return &entry, nil
}

func (r *FoodRepo) DeleteEntry(ctx context.Context, userID uuid.UUID, entryID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM food_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete food entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFoodEntryNotFound
	}
	return nil
}

func (r *FoodRepo) ListCustomFoods(ctx context.Context, userID uuid.UUID) ([]domain.CustomFood, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customFoodColumns+` FROM custom_foods WHERE user_id = $1 ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom foods: %w", err)
	}

	foods, err := pgx.CollectRows(rows, scanCustomFood)
	if err != nil {
		return nil, fmt.Errorf("failed to scan custom foods: %w", err)
	}
	return foods, nil
}

func (r *FoodRepo) GetCustomFood(ctx context.Context, userID uuid.UUID, foodID int64) (*domain.CustomFood, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customFoodColumns+` FROM custom_foods WHERE id = $1 AND user_id = $2`, foodID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get custom food: %w", err)
	}

	food, err := pgx.CollectExactlyOneRow(rows, scanCustomFood)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCustomFoodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom food: %w", err)
	}
	return &food, nil
}

func (r *FoodRepo) AddCustomFood(ctx context.Context, userID uuid.UUID, name string, n domain.Nutrients) (*domain.CustomFood, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO custom_foods (user_id, name, calories, protein, carbs, fat)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+customFoodColumns,
		userID, name, n.Calories, n.Protein, n.Carbs, n.Fat)
	if err != nil {
		return nil, fmt.Errorf("failed to add custom food: %w", err)
	}

	food, err := pgx.CollectExactlyOneRow(rows, scanCustomFood)
	if err != nil {
		return nil, fmt.Errorf("failed to add custom food: %w", err)
	}
	return &food, nil
}
