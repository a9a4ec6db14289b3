package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Nutrients are per-serving values; calories in kcal, macros in grams.
type Nutrients struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

type FoodEntry struct {
	ID        int64
	UserID    uuid.UUID
	Date      string
	FoodName  string
	Nutrients Nutrients
	CreatedAt time.Time
}

// CustomFood is an entry of a user's personal food library.
type CustomFood struct {
	ID        int64
	UserID    uuid.UUID
	Name      string
	Nutrients Nutrients
}

type FoodRepository interface {
	ListEntries(ctx context.Context, userID uuid.UUID, date string) ([]FoodEntry, error)
	ListAllEntries(ctx context.Context, userID uuid.UUID) ([]FoodEntry, error)
	AddEntry(ctx context.Context, userID uuid.UUID, date, foodName string, n Nutrients) (*FoodEntry, error)
	DeleteEntry(ctx context.Context, userID uuid.UUID, entryID int64) error
	ListCustomFoods(ctx context.Context, userID uuid.UUID) ([]CustomFood, error)
	GetCustomFood(ctx context.Context, userID uuid.UUID, foodID int64) (*CustomFood, error)
	AddCustomFood(ctx context.Context, userID uuid.UUID, name string, n Nutrients) (*CustomFood, error)
}
