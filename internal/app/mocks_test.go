package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/notecanvas/internal/domain"
)

// --- In-memory repositories ---

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.User
	getByID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, email, displayName, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	u := &domain.User{ID: uuid.New(), Email: email, DisplayName: displayName, PasswordHash: passwordHash}
	r.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByID++
	u, ok := r.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) UpdateDisplayName(_ context.Context, userID uuid.UUID, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.DisplayName = displayName
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	getFn    func(ctx context.Context, token string) (*domain.Session, error)
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *memSessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	if s.getFn != nil {
		return s.getFn(ctx, token)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *memSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type recordingAuth struct {
	mu       sync.Mutex
	attempts []string
}

func (r *recordingAuth) Attempt(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "fail"
	}
	r.attempts = append(r.attempts, op+":"+result)
}

// --- Function-field mocks ---

type mockTierRepo struct {
	listCategoriesFn func(ctx context.Context) ([]domain.TierCategory, error)
	listFoodItemsFn  func(ctx context.Context) ([]domain.TierFoodItem, error)
	listVotesFn      func(ctx context.Context) ([]domain.Vote, error)
	listUserVotesFn  func(ctx context.Context, userID uuid.UUID) ([]domain.Vote, error)
	addCategoryFn    func(ctx context.Context, name string) (*domain.TierCategory, error)
	upsertVoteFn     func(ctx context.Context, vote domain.Vote) error
}

func (m *mockTierRepo) ListCategories(ctx context.Context) ([]domain.TierCategory, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx)
	}
	return nil, nil
}

func (m *mockTierRepo) AddCategory(ctx context.Context, name string) (*domain.TierCategory, error) {
	if m.addCategoryFn != nil {
		return m.addCategoryFn(ctx, name)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockTierRepo) DeleteCategory(context.Context, uuid.UUID) error { return nil }

func (m *mockTierRepo) ListFoodItems(ctx context.Context) ([]domain.TierFoodItem, error) {
	if m.listFoodItemsFn != nil {
		return m.listFoodItemsFn(ctx)
	}
	return nil, nil
}

func (m *mockTierRepo) AddFoodItem(_ context.Context, categoryID uuid.UUID, foodName, restaurantName string) (*domain.TierFoodItem, error) {
	return &domain.TierFoodItem{ID: uuid.New(), CategoryID: categoryID, FoodName: foodName, RestaurantName: restaurantName}, nil
}

func (m *mockTierRepo) DeleteFoodItem(context.Context, uuid.UUID) error { return nil }

func (m *mockTierRepo) ListVotes(ctx context.Context) ([]domain.Vote, error) {
	if m.listVotesFn != nil {
		return m.listVotesFn(ctx)
	}
	return nil, nil
}

func (m *mockTierRepo) ListVotesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Vote, error) {
	if m.listUserVotesFn != nil {
		return m.listUserVotesFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTierRepo) UpsertVote(ctx context.Context, vote domain.Vote) error {
	if m.upsertVoteFn != nil {
		return m.upsertVoteFn(ctx, vote)
	}
	return nil
}

type mockFoodRepo struct {
	entries []domain.FoodEntry
	foods   []domain.CustomFood
	added   []domain.FoodEntry
}

func (m *mockFoodRepo) ListEntries(_ context.Context, _ uuid.UUID, date string) ([]domain.FoodEntry, error) {
	var out []domain.FoodEntry
	for _, e := range m.entries {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockFoodRepo) ListAllEntries(context.Context, uuid.UUID) ([]domain.FoodEntry, error) {
	return m.entries, nil
}

func (m *mockFoodRepo) AddEntry(_ context.Context, userID uuid.UUID, date, foodName string, n domain.Nutrients) (*domain.FoodEntry, error) {
	e := domain.FoodEntry{ID: int64(len(m.added) + 1), UserID: userID, Date: date, FoodName: foodName, Nutrients: n}
	m.added = append(m.added, e)
	return &e, nil
}

func (m *mockFoodRepo) DeleteEntry(context.Context, uuid.UUID, int64) error { return nil }

func (m *mockFoodRepo) ListCustomFoods(context.Context, uuid.UUID) ([]domain.CustomFood, error) {
	return m.foods, nil
}

func (m *mockFoodRepo) GetCustomFood(_ context.Context, _ uuid.UUID, foodID int64) (*domain.CustomFood, error) {
	for _, f := range m.foods {
		if f.ID == foodID {
			return &f, nil
		}
	}
	return nil, domain.ErrCustomFoodNotFound
}

func (m *mockFoodRepo) AddCustomFood(_ context.Context, userID uuid.UUID, name string, n domain.Nutrients) (*domain.CustomFood, error) {
	f := domain.CustomFood{ID: int64(len(m.foods) + 1), UserID: userID, Name: name, Nutrients: n}
	m.foods = append(m.foods, f)
	return &f, nil
}

type mockCalendarRepo struct {
	notes []domain.CalendarNote
}

func (m *mockCalendarRepo) List(context.Context, uuid.UUID) ([]domain.CalendarNote, error) {
	return m.notes, nil
}

func (m *mockCalendarRepo) Add(_ context.Context, userID uuid.UUID, date, text string) (*domain.CalendarNote, error) {
	n := domain.CalendarNote{ID: int64(len(m.notes) + 1), UserID: userID, Date: date, Text: text}
	m.notes = append(m.notes, n)
	return &n, nil
}

func (m *mockCalendarRepo) Delete(context.Context, uuid.UUID, int64) error { return nil }
