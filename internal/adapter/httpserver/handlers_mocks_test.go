package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/app"
	"github.com/pscheid92/notecanvas/internal/domain"
	"github.com/pscheid92/notecanvas/internal/platform/config"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockIdentity struct {
	signUpFn            func(ctx context.Context, email, password, displayName string) (*domain.User, error)
	signInFn            func(ctx context.Context, email, password string) (*domain.Session, error)
	signOutFn           func(ctx context.Context, token string) error
	currentSessionFn    func(ctx context.Context, token string) (*domain.User, error)
	updateDisplayNameFn func(ctx context.Context, userID uuid.UUID, displayName string) (*domain.User, error)
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password, displayName)
	}
	return nil, errors.New("not implemented")
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockIdentity) SignOut(ctx context.Context, token string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, token)
	}
	return nil
}

func (m *mockIdentity) CurrentSession(ctx context.Context, token string) (*domain.User, error) {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(ctx, token)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *mockIdentity) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) (*domain.User, error) {
	if m.updateDisplayNameFn != nil {
		return m.updateDisplayNameFn(ctx, userID, displayName)
	}
	return nil, errors.New("not implemented")
}

type mockNotes struct {
	listFn   func(ctx context.Context, ownerID uuid.UUID) ([]domain.Note, error)
	createFn func(ctx context.Context, ownerID uuid.UUID) (*domain.Note, error)
	updateFn func(ctx context.Context, ownerID uuid.UUID, noteID string, patch domain.NotePatch) error
	deleteFn func(ctx context.Context, ownerID uuid.UUID, noteID string) error
}

func (m *mockNotes) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Note, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockNotes) Create(ctx context.Context, ownerID uuid.UUID) (*domain.Note, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockNotes) Update(ctx context.Context, ownerID uuid.UUID, noteID string, patch domain.NotePatch) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, ownerID, noteID, patch)
	}
	return nil
}

func (m *mockNotes) Delete(ctx context.Context, ownerID uuid.UUID, noteID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, noteID)
	}
	return nil
}

type mockCalendar struct {
	listFn   func(ctx context.Context, userID uuid.UUID) ([]domain.CalendarNote, error)
	addFn    func(ctx context.Context, userID uuid.UUID, date, text string) (*domain.CalendarNote, error)
	deleteFn func(ctx context.Context, userID uuid.UUID, noteID int64) error
	exportFn func(ctx context.Context, userID uuid.UUID, w io.Writer) error
}

func (m *mockCalendar) List(ctx context.Context, userID uuid.UUID) ([]domain.CalendarNote, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCalendar) Add(ctx context.Context, userID uuid.UUID, date, text string) (*domain.CalendarNote, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, date, text)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCalendar) Delete(ctx context.Context, userID uuid.UUID, noteID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, noteID)
	}
	return nil
}

func (m *mockCalendar) ExportICS(ctx context.Context, userID uuid.UUID, w io.Writer) error {
	if m.exportFn != nil {
		return m.exportFn(ctx, userID, w)
	}
	return nil
}

type mockFood struct {
	dayFn            func(ctx context.Context, userID uuid.UUID, date string) (*app.DayGroup, error)
	historyFn        func(ctx context.Context, userID uuid.UUID) ([]app.DayGroup, error)
	libraryFn        func(ctx context.Context, userID uuid.UUID) ([]domain.CustomFood, error)
	logFromLibraryFn func(ctx context.Context, userID uuid.UUID, date string, foodID int64) (*domain.FoodEntry, error)
	logNewFoodFn     func(ctx context.Context, userID uuid.UUID, date, name string, n domain.Nutrients) (*domain.FoodEntry, error)
	deleteEntryFn    func(ctx context.Context, userID uuid.UUID, entryID int64) error
}

func (m *mockFood) Day(ctx context.Context, userID uuid.UUID, date string) (*app.DayGroup, error) {
	if m.dayFn != nil {
		return m.dayFn(ctx, userID, date)
	}
	return &app.DayGroup{Summary: app.Summarize(date, nil)}, nil
}

func (m *mockFood) History(ctx context.Context, userID uuid.UUID) ([]app.DayGroup, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFood) Library(ctx context.Context, userID uuid.UUID) ([]domain.CustomFood, error) {
	if m.libraryFn != nil {
		return m.libraryFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFood) LogFromLibrary(ctx context.Context, userID uuid.UUID, date string, foodID int64) (*domain.FoodEntry, error) {
	if m.logFromLibraryFn != nil {
		return m.logFromLibraryFn(ctx, userID, date, foodID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockFood) LogNewFood(ctx context.Context, userID uuid.UUID, date, name string, n domain.Nutrients) (*domain.FoodEntry, error) {
	if m.logNewFoodFn != nil {
		return m.logNewFoodFn(ctx, userID, date, name, n)
	}
	return nil, errors.New("not implemented")
}

func (m *mockFood) DeleteEntry(ctx context.Context, userID uuid.UUID, entryID int64) error {
	if m.deleteEntryFn != nil {
		return m.deleteEntryFn(ctx, userID, entryID)
	}
	return nil
}

type mockTiers struct {
	admin            bool
	boardFn          func(ctx context.Context, restaurant string) (*app.TierBoard, error)
	addCategoryFn    func(ctx context.Context, actor *domain.User, name string) (*domain.TierCategory, error)
	deleteCategoryFn func(ctx context.Context, actor *domain.User, categoryID uuid.UUID) error
	addFoodItemFn    func(ctx context.Context, actor *domain.User, categoryID uuid.UUID, foodName, restaurant string) (*domain.TierFoodItem, error)
	deleteFoodItemFn func(ctx context.Context, actor *domain.User, itemID uuid.UUID) error
	voteFn           func(ctx context.Context, userID, itemID uuid.UUID, taste, look int) error
	ballotFn         func(ctx context.Context, userID uuid.UUID) ([]app.BallotItem, error)
}

func (m *mockTiers) IsAdmin(*domain.User) bool { return m.admin }

func (m *mockTiers) Board(ctx context.Context, restaurant string) (*app.TierBoard, error) {
	if m.boardFn != nil {
		return m.boardFn(ctx, restaurant)
	}
	return &app.TierBoard{}, nil
}

func (m *mockTiers) Ballot(ctx context.Context, userID uuid.UUID) ([]app.BallotItem, error) {
	if m.ballotFn != nil {
		return m.ballotFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTiers) AddCategory(ctx context.Context, actor *domain.User, name string) (*domain.TierCategory, error) {
	if m.addCategoryFn != nil {
		return m.addCategoryFn(ctx, actor, name)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTiers) DeleteCategory(ctx context.Context, actor *domain.User, categoryID uuid.UUID) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(ctx, actor, categoryID)
	}
	return nil
}

func (m *mockTiers) AddFoodItem(ctx context.Context, actor *domain.User, categoryID uuid.UUID, foodName, restaurant string) (*domain.TierFoodItem, error) {
	if m.addFoodItemFn != nil {
		return m.addFoodItemFn(ctx, actor, categoryID, foodName, restaurant)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTiers) DeleteFoodItem(ctx context.Context, actor *domain.User, itemID uuid.UUID) error {
	if m.deleteFoodItemFn != nil {
		return m.deleteFoodItemFn(ctx, actor, itemID)
	}
	return nil
}

func (m *mockTiers) Vote(ctx context.Context, userID, itemID uuid.UUID, taste, look int) error {
	if m.voteFn != nil {
		return m.voteFn(ctx, userID, itemID, taste, look)
	}
	return nil
}

type mockCanvas struct {
	serveFn func(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) error
}

func (m *mockCanvas) ServeCanvas(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) error {
	if m.serveFn != nil {
		return m.serveFn(w, r, ownerID)
	}
	return nil
}

// --- Test helpers ---

const testToken = "test-session-token"

var testUser = &domain.User{
	ID:          uuid.MustParse("11111111-2222-3333-4444-555555555555"),
	Email:       "ada@example.com",
	DisplayName: "Ada",
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:        "test",
		SessionSecret: "test-secret-key-32-bytes-long!!!",
		SessionMaxAge: time.Hour,
		RateLimitAuth: 1000,
	}
}

// newTestServer fills every missing service with an empty mock. The identity
// mock, unless given, accepts testToken for testUser.
func newTestServer(t *testing.T, services Services, opts ...Option) *Server {
	t.Helper()

	if services.Identity == nil {
		services.Identity = signedInIdentity()
	}
	if services.Notes == nil {
		services.Notes = &mockNotes{}
	}
	if services.Calendar == nil {
		services.Calendar = &mockCalendar{}
	}
	if services.Food == nil {
		services.Food = &mockFood{}
	}
	if services.Tiers == nil {
		services.Tiers = &mockTiers{}
	}
	if services.Canvas == nil {
		services.Canvas = &mockCanvas{}
	}

	return NewServer(testConfig(), services, opts...)
}

func signedInIdentity() *mockIdentity {
	return &mockIdentity{
		currentSessionFn: func(_ context.Context, token string) (*domain.User, error) {
			if token != testToken {
				return nil, domain.ErrSessionNotFound
			}
			return testUser, nil
		},
	}
}

// sessionCookie encodes token into a cookie the server will accept.
func sessionCookie(t *testing.T, srv *Server, token string) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, err := srv.sessionStore.New(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyToken] = token
	require.NoError(t, session.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

// doRequest sends a request through the full middleware stack. A non-empty
// token is attached as a session cookie.
func doRequest(t *testing.T, srv *Server, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := newRequest(method, target, body)
	if token != "" {
		req.AddCookie(sessionCookie(t, srv, token))
	}
	return serve(srv, req)
}

func newRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}
