package domain

import "errors"

var (
	ErrNoteNotFound         = errors.New("note not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionNotFound      = errors.New("session not found")
	ErrCalendarNoteNotFound = errors.New("calendar note not found")
	ErrFoodEntryNotFound    = errors.New("food entry not found")
	ErrCustomFoodNotFound   = errors.New("custom food not found")
	ErrCategoryNotFound     = errors.New("tier category not found")
	ErrFoodItemNotFound     = errors.New("tier food item not found")
	ErrForbidden            = errors.New("forbidden")
	ErrControllerClosed     = errors.New("canvas controller closed")
)
