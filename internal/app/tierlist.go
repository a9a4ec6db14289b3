package app

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
	"golang.org/x/sync/errgroup"
)

const (
	minRating     = 0
	maxRating     = 10
	defaultRating = 5
)

// RatedItem is a food item with its aggregated votes. Averages are nil when
// nobody has voted yet.
type RatedItem struct {
	Item      domain.TierFoodItem
	AvgTaste  *float64
	AvgLook   *float64
	VoteCount int
}

// Score is the mean of the two averages; ok is false for unrated items.
func (r RatedItem) Score() (score float64, ok bool) {
	if r.AvgTaste == nil || r.AvgLook == nil {
		return 0, false
	}
	return (*r.AvgTaste + *r.AvgLook) / 2, true
}

func (r RatedItem) Tier() string {
	score, ok := r.Score()
	if !ok {
		return "?"
	}
	return TierFor(score)
}

func TierFor(score float64) string {
	switch {
	case score >= 9:
		return "S"
	case score >= 7:
		return "A"
	case score >= 5:
		return "B"
	case score >= 3:
		return "C"
	default:
		return "D"
	}
}

type CategoryTier struct {
	Category domain.TierCategory
	Items    []RatedItem
}

type RestaurantBest struct {
	Restaurant string
	Item       RatedItem
}

type TierBoard struct {
	Categories  []CategoryTier
	Restaurants []string
	Best        []RestaurantBest
}

type TierList struct {
	repo      domain.TierRepository
	adminName string
}

func NewTierList(repo domain.TierRepository, adminName string) *TierList {
	return &TierList{repo: repo, adminName: adminName}
}

func (s *TierList) IsAdmin(user *domain.User) bool {
	return user != nil && s.adminName != "" && user.DisplayName == s.adminName
}

func (s *TierList) requireAdmin(user *domain.User) error {
	if !s.IsAdmin(user) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *TierList) Categories(ctx context.Context) ([]domain.TierCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *TierList) AddCategory(ctx context.Context, actor *domain.User, name string) (*domain.TierCategory, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationError("category name is required")
	}
	return s.repo.AddCategory(ctx, name)
}

func (s *TierList) DeleteCategory(ctx context.Context, actor *domain.User, categoryID uuid.UUID) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, categoryID)
}

func (s *TierList) AddFoodItem(ctx context.Context, actor *domain.User, categoryID uuid.UUID, foodName, restaurant string) (*domain.TierFoodItem, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	foodName, restaurant = strings.TrimSpace(foodName), strings.TrimSpace(restaurant)
	if categoryID == uuid.Nil || foodName == "" || restaurant == "" {
		return nil, apperrors.ValidationError("category, food name and restaurant are required")
	}
	return s.repo.AddFoodItem(ctx, categoryID, foodName, restaurant)
}

func (s *TierList) DeleteFoodItem(ctx context.Context, actor *domain.User, itemID uuid.UUID) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	return s.repo.DeleteFoodItem(ctx, itemID)
}

// Vote records the user's ratings, replacing an earlier vote on the same item.
func (s *TierList) Vote(ctx context.Context, userID, itemID uuid.UUID, taste, look int) error {
	if taste < minRating || taste > maxRating || look < minRating || look > maxRating {
		return apperrors.ValidationError("ratings must be between 0 and 10")
	}
	return s.repo.UpsertVote(ctx, domain.Vote{UserID: userID, FoodItemID: itemID, Taste: taste, Look: look})
}

// BallotItem is a food item with the voting user's own ratings. Items the
// user has not rated yet carry the default ratings and Voted is false.
type BallotItem struct {
	Item     domain.TierFoodItem
	Category string
	Taste    int
	Look     int
	Voted    bool
}

// Ballot returns every food item with the user's own vote, for prefilling
// the rating form.
func (s *TierList) Ballot(ctx context.Context, userID uuid.UUID) ([]BallotItem, error) {
	var (
		categories []domain.TierCategory
		items      []domain.TierFoodItem
		votes      []domain.Vote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		categories, err = s.repo.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		items, err = s.repo.ListFoodItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		votes, err = s.repo.ListVotesByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildBallot(categories, items, votes), nil
}

func BuildBallot(categories []domain.TierCategory, items []domain.TierFoodItem, votes []domain.Vote) []BallotItem {
	names := make(map[uuid.UUID]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	mine := make(map[uuid.UUID]domain.Vote, len(votes))
	for _, v := range votes {
		mine[v.FoodItemID] = v
	}

	ballot := make([]BallotItem, 0, len(items))
	for _, item := range items {
		b := BallotItem{Item: item, Category: names[item.CategoryID], Taste: defaultRating, Look: defaultRating}
		if v, ok := mine[item.ID]; ok {
			b.Taste, b.Look, b.Voted = v.Taste, v.Look, true
		}
		ballot = append(ballot, b)
	}
	return ballot
}

// Board loads categories, items and votes concurrently and aggregates them.
// A non-empty restaurant limits the category lists to that restaurant; the
// per-restaurant best list always covers every restaurant.
func (s *TierList) Board(ctx context.Context, restaurant string) (*TierBoard, error) {
	var (
		categories []domain.TierCategory
		items      []domain.TierFoodItem
		votes      []domain.Vote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		categories, err = s.repo.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		items, err = s.repo.ListFoodItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		votes, err = s.repo.ListVotes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildBoard(categories, items, votes, restaurant), nil
}

func BuildBoard(categories []domain.TierCategory, items []domain.TierFoodItem, votes []domain.Vote, restaurant string) *TierBoard {
	rated := RateItems(items, votes)

	board := &TierBoard{
		Categories:  make([]CategoryTier, 0, len(categories)),
		Restaurants: Restaurants(items),
	}
	for _, cat := range categories {
		ct := CategoryTier{Category: cat, Items: []RatedItem{}}
		for _, r := range rated {
			if r.Item.CategoryID != cat.ID {
				continue
			}
			if restaurant != "" && r.Item.RestaurantName != restaurant {
				continue
			}
			ct.Items = append(ct.Items, r)
		}
		board.Categories = append(board.Categories, ct)
	}
	board.Best = BestByRestaurant(rated, board.Restaurants)
	return board
}

func RateItems(items []domain.TierFoodItem, votes []domain.Vote) []RatedItem {
	type sums struct{ taste, look, n int }
	byItem := make(map[uuid.UUID]*sums, len(items))
	for _, v := range votes {
		s, ok := byItem[v.FoodItemID]
		if !ok {
			s = &sums{}
			byItem[v.FoodItemID] = s
		}
		s.taste += v.Taste
		s.look += v.Look
		s.n++
	}

	rated := make([]RatedItem, 0, len(items))
	for _, item := range items {
		r := RatedItem{Item: item}
		if s, ok := byItem[item.ID]; ok && s.n > 0 {
			taste := float64(s.taste) / float64(s.n)
			look := float64(s.look) / float64(s.n)
			r.AvgTaste, r.AvgLook, r.VoteCount = &taste, &look, s.n
		}
		rated = append(rated, r)
	}
	return rated
}

// Restaurants returns the distinct restaurant names, sorted.
func Restaurants(items []domain.TierFoodItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.RestaurantName)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// BestByRestaurant picks the highest-scoring rated item per restaurant. On a
// tie the item listed first wins. Restaurants without rated items are omitted.
func BestByRestaurant(rated []RatedItem, restaurants []string) []RestaurantBest {
	var best []RestaurantBest
	for _, name := range restaurants {
		var top *RatedItem
		var topScore float64
		for i := range rated {
			if rated[i].Item.RestaurantName != name {
				continue
			}
			score, ok := rated[i].Score()
			if !ok {
				continue
			}
			if top == nil || score > topScore {
				top, topScore = &rated[i], score
			}
		}
		if top != nil {
			best = append(best, RestaurantBest{Restaurant: name, Item: *top})
		}
	}
	return best
}
