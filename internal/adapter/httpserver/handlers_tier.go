package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

func (s *Server) registerTierRoutes(api *echo.Group) {
	api.GET("/tier", s.handleTierBoard)
	api.POST("/tier/categories", s.handleAddCategory)
	api.DELETE("/tier/categories/:id", s.handleDeleteCategory)
	api.POST("/tier/items", s.handleAddFoodItem)
	api.DELETE("/tier/items/:id", s.handleDeleteFoodItem)
	api.PUT("/tier/items/:id/vote", s.handleVote)
	api.GET("/tier/votes/mine", s.handleMyVotes)
}

// handleTierBoard accepts an optional ?restaurant= filter.
func (s *Server) handleTierBoard(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	board, err := s.tiers.Board(c.Request().Context(), c.QueryParam("restaurant"))
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, toBoardResponse(board, s.tiers.IsAdmin(user)))
}

type addCategoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddCategory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req addCategoryRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	category, err := s.tiers.AddCategory(c.Request().Context(), user, req.Name)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusCreated, categoryResponse{ID: category.ID.String(), Name: category.Name, Items: []ratedItemResponse{}})
}

func (s *Server) handleDeleteCategory(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.tiers.DeleteCategory(c.Request().Context(), user, id); err != nil {
		return err
	}
	return sendNoContent(c)
}

type addFoodItemRequest struct {
	CategoryID     string `json:"category_id"`
	FoodName       string `json:"food_name"`
	RestaurantName string `json:"restaurant_name"`
}

func (s *Server) handleAddFoodItem(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req addFoodItemRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return apperrors.ValidationError("invalid category_id").WithField("category_id", req.CategoryID)
	}

	item, err := s.tiers.AddFoodItem(c.Request().Context(), user, categoryID, req.FoodName, req.RestaurantName)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusCreated, ratedItemResponse{
		ID:             item.ID.String(),
		CategoryID:     item.CategoryID.String(),
		FoodName:       item.FoodName,
		RestaurantName: item.RestaurantName,
		Tier:           "?",
	})
}

func (s *Server) handleDeleteFoodItem(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.tiers.DeleteFoodItem(c.Request().Context(), user, id); err != nil {
		return err
	}
	return sendNoContent(c)
}

type voteRequest struct {
	Taste int `json:"taste"`
	Look  int `json:"look"`
}

func (s *Server) handleVote(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.tiers.Vote(c.Request().Context(), user.ID, id, req.Taste, req.Look); err != nil {
		return err
	}
	return sendNoContent(c)
}

// handleMyVotes lists every item with the caller's ratings, defaulted for
// items they have not rated.
func (s *Server) handleMyVotes(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	ballot, err := s.tiers.Ballot(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := make([]ballotItemResponse, 0, len(ballot))
	for _, b := range ballot {
		resp = append(resp, toBallotItemResponse(b))
	}
	return sendJSON(c, http.StatusOK, resp)
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid " + name).WithField(name, raw)
	}
	return id, nil
}
