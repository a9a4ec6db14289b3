package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/app"
	"github.com/pscheid92/notecanvas/internal/domain"
)

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"created_at"`
}

func toNoteResponse(n domain.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Content:   n.Content,
		Color:     n.Color,
		X:         n.Position.X,
		Y:         n.Position.Y,
		CreatedAt: n.CreatedAt,
	}
}

type calendarNoteResponse struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
	Text string `json:"text"`
}

func toCalendarNoteResponse(n domain.CalendarNote) calendarNoteResponse {
	return calendarNoteResponse{ID: n.ID, Date: n.Date, Text: n.Text}
}

type foodEntryResponse struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	FoodName string `json:"food_name"`
	domain.Nutrients
}

func toFoodEntryResponse(e domain.FoodEntry) foodEntryResponse {
	return foodEntryResponse{ID: e.ID, Date: e.Date, FoodName: e.FoodName, Nutrients: e.Nutrients}
}

type customFoodResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	domain.Nutrients
}

type dayResponse struct {
	app.DaySummary
	Entries []foodEntryResponse `json:"entries"`
}

func toDayResponse(g app.DayGroup) dayResponse {
	entries := make([]foodEntryResponse, 0, len(g.Entries))
	for _, e := range g.Entries {
		entries = append(entries, toFoodEntryResponse(e))
	}
	return dayResponse{DaySummary: g.Summary, Entries: entries}
}

type ratedItemResponse struct {
	ID             string   `json:"id"`
	CategoryID     string   `json:"category_id"`
	FoodName       string   `json:"food_name"`
	RestaurantName string   `json:"restaurant_name"`
	AvgTaste       *float64 `json:"avg_taste"`
	AvgLook        *float64 `json:"avg_look"`
	VoteCount      int      `json:"vote_count"`
	Tier           string   `json:"tier"`
}

func toRatedItemResponse(r app.RatedItem) ratedItemResponse {
	return ratedItemResponse{
		ID:             r.Item.ID.String(),
		CategoryID:     r.Item.CategoryID.String(),
		FoodName:       r.Item.FoodName,
		RestaurantName: r.Item.RestaurantName,
		AvgTaste:       r.AvgTaste,
		AvgLook:        r.AvgLook,
		VoteCount:      r.VoteCount,
		Tier:           r.Tier(),
	}
}

type ballotItemResponse struct {
	ItemID         string `json:"item_id"`
	CategoryID     string `json:"category_id"`
	CategoryName   string `json:"category_name"`
	FoodName       string `json:"food_name"`
	RestaurantName string `json:"restaurant_name"`
	Taste          int    `json:"taste"`
	Look           int    `json:"look"`
	Voted          bool   `json:"voted"`
}

func toBallotItemResponse(b app.BallotItem) ballotItemResponse {
	return ballotItemResponse{
		ItemID:         b.Item.ID.String(),
		CategoryID:     b.Item.CategoryID.String(),
		CategoryName:   b.Category,
		FoodName:       b.Item.FoodName,
		RestaurantName: b.Item.RestaurantName,
		Taste:          b.Taste,
		Look:           b.Look,
		Voted:          b.Voted,
	}
}

type categoryResponse struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Items []ratedItemResponse `json:"items"`
}

type restaurantBestResponse struct {
	Restaurant string            `json:"restaurant"`
	Item       ratedItemResponse `json:"item"`
}

type boardResponse struct {
	Categories  []categoryResponse       `json:"categories"`
	Restaurants []string                 `json:"restaurants"`
	Best        []restaurantBestResponse `json:"best"`
	IsAdmin     bool                     `json:"is_admin"`
}

func toBoardResponse(b *app.TierBoard, isAdmin bool) boardResponse {
	resp := boardResponse{
		Categories:  make([]categoryResponse, 0, len(b.Categories)),
		Restaurants: b.Restaurants,
		Best:        make([]restaurantBestResponse, 0, len(b.Best)),
		IsAdmin:     isAdmin,
	}
	if resp.Restaurants == nil {
		resp.Restaurants = []string{}
	}
	for _, ct := range b.Categories {
		items := make([]ratedItemResponse, 0, len(ct.Items))
		for _, it := range ct.Items {
			items = append(items, toRatedItemResponse(it))
		}
		resp.Categories = append(resp.Categories, categoryResponse{ID: ct.Category.ID.String(), Name: ct.Category.Name, Items: items})
	}
	for _, best := range b.Best {
		resp.Best = append(resp.Best, restaurantBestResponse{Restaurant: best.Restaurant, Item: toRatedItemResponse(best.Item)})
	}
	return resp
}

func sendJSON(c echo.Context, status int, v any) error {
	if err := c.JSON(status, v); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func sendNoContent(c echo.Context) error {
	if err := c.NoContent(http.StatusNoContent); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}
	return nil
}
