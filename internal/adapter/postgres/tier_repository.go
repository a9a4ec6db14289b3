package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/notecanvas/internal/domain"
)

// TierRepo stores the shared tier list. Categories and items are global;
// votes are keyed by (user, item).
type TierRepo struct {
	pool *pgxpool.Pool
}

var _ domain.TierRepository = (*TierRepo)(nil)

func NewTierRepo(pool *pgxpool.Pool) *TierRepo {
	return &TierRepo{pool: pool}
}

func (r *TierRepo) ListCategories(ctx context.Context) ([]domain.TierCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tier_categories ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.TierCategory])
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

func (r *TierRepo) AddCategory(ctx context.Context, name string) (*domain.TierCategory, error) {
	rows, err := r.pool.Query(ctx, `INSERT INTO tier_categories (name) VALUES ($1) RETURNING id, name`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to add category: %w", err)
	}

	category, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[domain.TierCategory])
	if err != nil {
		return nil, fmt.Errorf("failed to add category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes the category together with its items and their votes.
func (r *TierRepo) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tier_categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *TierRepo) ListFoodItems(ctx context.Context) ([]domain.TierFoodItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category_id, food_name, restaurant_name FROM tier_food_items ORDER BY created_at, food_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.TierFoodItem])
	if err != nil {
		return nil, fmt.Errorf("failed to scan food items: %w", err)
	}
	return items, nil
}

func (r *TierRepo) AddFoodItem(ctx context.Context, categoryID uuid.UUID, foodName, restaurantName string) (*domain.TierFoodItem, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO tier_food_items (category_id, food_name, restaurant_name)
		VALUES ($1, $2, $3)
		RETURNING id, category_id, food_name, restaurant_name`,
		categoryID, foodName, restaurantName)
	if err == nil {
		var item domain.TierFoodItem
		item, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[domain.TierFoodItem])
		if err == nil {
			return &item, nil
		}
	}
	if pgErrorCode(err) == pgForeignKeyViolation {
		return nil, domain.ErrCategoryNotFound
	}
	return nil, fmt.Errorf("failed to add food item: %w", err)
}

func (r *TierRepo) DeleteFoodItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tier_food_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete food item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFoodItemNotFound
	}
	return nil
}

func (r *TierRepo) ListVotes(ctx context.Context) ([]domain.Vote, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, food_item_id, taste_rating, look_rating FROM tier_votes`)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	votes, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Vote])
	if err != nil {
		return nil, fmt.Errorf("failed to scan votes: %w", err)
	}
	return votes, nil
}

func (r *TierRepo) ListVotesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Vote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, food_item_id, taste_rating, look_rating FROM tier_votes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user votes: %w", err)
	}

	votes, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Vote])
	if err != nil {
		return nil, fmt.Errorf("failed to scan user votes: %w", err)
	}
	return votes, nil
}

// UpsertVote replaces the user's previous vote on the item, if any.
func (r *TierRepo) UpsertVote(ctx context.Context, vote domain.Vote) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tier_votes (user_id, food_item_id, taste_rating, look_rating)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, food_item_id)
		DO UPDATE SET taste_rating = EXCLUDED.taste_rating, look_rating = EXCLUDED.look_rating, updated_at = now()`,
		vote.UserID, vote.FoodItemID, vote.Taste, vote.Look)
	if pgErrorCode(err) == pgForeignKeyViolation {
		return domain.ErrFoodItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}
