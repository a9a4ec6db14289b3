package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

func (s *Server) registerFoodRoutes(api *echo.Group) {
	api.GET("/food/days/:date", s.handleFoodDay)
	api.GET("/food/history", s.handleFoodHistory)
	api.GET("/food/library", s.handleFoodLibrary)
	api.POST("/food/entries", s.handleLogNewFood)
	api.POST("/food/entries/from-library", s.handleLogFromLibrary)
	api.DELETE("/food/entries/:id", s.handleDeleteFoodEntry)
}

func (s *Server) handleFoodDay(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	day, err := s.food.Day(c.Request().Context(), user.ID, c.Param("date"))
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, toDayResponse(*day))
}

func (s *Server) handleFoodHistory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	days, err := s.food.History(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := make([]dayResponse, 0, len(days))
	for _, d := range days {
		resp = append(resp, toDayResponse(d))
	}
	return sendJSON(c, http.StatusOK, resp)
}

func (s *Server) handleFoodLibrary(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	foods, err := s.food.Library(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := make([]customFoodResponse, 0, len(foods))
	for _, f := range foods {
		resp = append(resp, customFoodResponse{ID: f.ID, Name: f.Name, Nutrients: f.Nutrients})
	}
	return sendJSON(c, http.StatusOK, resp)
}

// logNewFoodRequest uses pointers so a missing calorie value can be told
// apart from zero.
type logNewFoodRequest struct {
	Date     string `json:"date"`
	Name     string `json:"name"`
	Calories *int   `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}

func (s *Server) handleLogNewFood(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req logNewFoodRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Calories == nil {
		return apperrors.ValidationError("calories are required")
	}

	n := domain.Nutrients{Calories: *req.Calories, Protein: req.Protein, Carbs: req.Carbs, Fat: req.Fat}
	entry, err := s.food.LogNewFood(c.Request().Context(), user.ID, req.Date, req.Name, n)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusCreated, toFoodEntryResponse(*entry))
}

type logFromLibraryRequest struct {
	Date   string `json:"date"`
	FoodID int64  `json:"food_id"`
}

func (s *Server) handleLogFromLibrary(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req logFromLibraryRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.FoodID <= 0 {
		return apperrors.ValidationError("food_id is required")
	}

	entry, err := s.food.LogFromLibrary(c.Request().Context(), user.ID, req.Date, req.FoodID)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusCreated, toFoodEntryResponse(*entry))
}

func (s *Server) handleDeleteFoodEntry(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := parseInt64Param(c, "id")
	if err != nil {
		return err
	}

	if err := s.food.DeleteEntry(c.Request().Context(), user.ID, id); err != nil {
		return err
	}
	return sendNoContent(c)
}
