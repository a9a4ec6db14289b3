package domain

import (
	"context"

	"github.com/google/uuid"
)

type TierCategory struct {
	ID   uuid.UUID
	Name string
}

type TierFoodItem struct {
	ID             uuid.UUID
	CategoryID     uuid.UUID
	FoodName       string
	RestaurantName string
}

type Vote struct {
	UserID     uuid.UUID
	FoodItemID uuid.UUID
	Taste      int
	Look       int
}

type TierRepository interface {
	ListCategories(ctx context.Context) ([]TierCategory, error)
	AddCategory(ctx context.Context, name string) (*TierCategory, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error
	ListFoodItems(ctx context.Context) ([]TierFoodItem, error)
	AddFoodItem(ctx context.Context, categoryID uuid.UUID, foodName, restaurantName string) (*TierFoodItem, error)
	DeleteFoodItem(ctx context.Context, itemID uuid.UUID) error
	ListVotes(ctx context.Context) ([]Vote, error)
	ListVotesByUser(ctx context.Context, userID uuid.UUID) ([]Vote, error)
	UpsertVote(ctx context.Context, vote Vote) error
}
