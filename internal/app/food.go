package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

type Food struct {
	repo domain.FoodRepository
}

func NewFood(repo domain.FoodRepository) *Food {
	return &Food{repo: repo}
}

// Day returns one day's entries together with its summary.
func (s *Food) Day(ctx context.Context, userID uuid.UUID, date string) (*DayGroup, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return &DayGroup{Summary: Summarize(date, entries), Entries: entries}, nil
}

func (s *Food) History(ctx context.Context, userID uuid.UUID) ([]DayGroup, error) {
	entries, err := s.repo.ListAllEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupByDate(entries), nil
}

func (s *Food) Library(ctx context.Context, userID uuid.UUID) ([]domain.CustomFood, error) {
	return s.repo.ListCustomFoods(ctx, userID)
}

// LogFromLibrary adds an entry for a food of the user's library.
func (s *Food) LogFromLibrary(ctx context.Context, userID uuid.UUID, date string, foodID int64) (*domain.FoodEntry, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	food, err := s.repo.GetCustomFood(ctx, userID, foodID)
	if err != nil {
		return nil, err
	}
	return s.repo.AddEntry(ctx, userID, date, food.Name, food.Nutrients)
}

// LogNewFood stores a new food in the library and logs it for the day.
func (s *Food) LogNewFood(ctx context.Context, userID uuid.UUID, date, name string, n domain.Nutrients) (*domain.FoodEntry, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationError("name is required")
	}
	if n.Calories < 0 || n.Protein < 0 || n.Carbs < 0 || n.Fat < 0 {
		return nil, apperrors.ValidationError("nutrient values must not be negative")
	}

	food, err := s.repo.AddCustomFood(ctx, userID, name, n)
	if err != nil {
		return nil, err
	}
	return s.repo.AddEntry(ctx, userID, date, food.Name, food.Nutrients)
}

func (s *Food) DeleteEntry(ctx context.Context, userID uuid.UUID, entryID int64) error {
	return s.repo.DeleteEntry(ctx, userID, entryID)
}

func validateDate(date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return apperrors.ValidationError("date must be YYYY-MM-DD").WithField("date", date)
	}
	return nil
}
