package httpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/notecanvas/internal/adapter/metrics"
	"github.com/pscheid92/notecanvas/internal/app"
	"github.com/pscheid92/notecanvas/internal/domain"
	"github.com/pscheid92/notecanvas/internal/platform/config"
)

type noteService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Note, error)
	Create(ctx context.Context, ownerID uuid.UUID) (*domain.Note, error)
	Update(ctx context.Context, ownerID uuid.UUID, noteID string, patch domain.NotePatch) error
	Delete(ctx context.Context, ownerID uuid.UUID, noteID string) error
}

type calendarService interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.CalendarNote, error)
	Add(ctx context.Context, userID uuid.UUID, date, text string) (*domain.CalendarNote, error)
	Delete(ctx context.Context, userID uuid.UUID, noteID int64) error
	ExportICS(ctx context.Context, userID uuid.UUID, w io.Writer) error
}

type foodService interface {
	Day(ctx context.Context, userID uuid.UUID, date string) (*app.DayGroup, error)
	History(ctx context.Context, userID uuid.UUID) ([]app.DayGroup, error)
	Library(ctx context.Context, userID uuid.UUID) ([]domain.CustomFood, error)
	LogFromLibrary(ctx context.Context, userID uuid.UUID, date string, foodID int64) (*domain.FoodEntry, error)
	LogNewFood(ctx context.Context, userID uuid.UUID, date, name string, n domain.Nutrients) (*domain.FoodEntry, error)
	DeleteEntry(ctx context.Context, userID uuid.UUID, entryID int64) error
}

type tierService interface {
	IsAdmin(user *domain.User) bool
	Board(ctx context.Context, restaurant string) (*app.TierBoard, error)
	Ballot(ctx context.Context, userID uuid.UUID) ([]app.BallotItem, error)
	AddCategory(ctx context.Context, actor *domain.User, name string) (*domain.TierCategory, error)
	DeleteCategory(ctx context.Context, actor *domain.User, categoryID uuid.UUID) error
	AddFoodItem(ctx context.Context, actor *domain.User, categoryID uuid.UUID, foodName, restaurant string) (*domain.TierFoodItem, error)
	DeleteFoodItem(ctx context.Context, actor *domain.User, itemID uuid.UUID) error
	Vote(ctx context.Context, userID, itemID uuid.UUID, taste, look int) error
}

// canvasHandler serves the canvas websocket for an authenticated user.
type canvasHandler interface {
	ServeCanvas(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) error
}

// Services bundles what the HTTP layer calls into.
type Services struct {
	Identity domain.IdentityService
	Notes    noteService
	Calendar calendarService
	Food     foodService
	Tiers    tierService
	Canvas   canvasHandler
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	identity domain.IdentityService
	notes    noteService
	calendar calendarService
	food     foodService
	tiers    tierService
	canvas   canvasHandler

	sessionStore   *sessions.CookieStore
	healthChecks   []HealthCheck
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	startTime      time.Time
}

// Option customizes a Server.
type Option func(*Server)

func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) { s.healthChecks = checks }
}

// WithMetrics records request metrics and serves handler at /metrics.
func WithMetrics(m *metrics.HTTPMetrics, handler http.Handler) Option {
	return func(s *Server) {
		s.httpMetrics = m
		s.metricsHandler = handler
	}
}

func NewServer(cfg *config.Config, services Services, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		identity:     services.Identity,
		notes:        services.Notes,
		calendar:     services.Calendar,
		food:         services.Food,
		tiers:        services.Tiers,
		canvas:       services.Canvas,
		sessionStore: setupSessionStore(cfg),
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Session keys
const (
	sessionName     = "notecanvas-session"
	sessionKeyToken = "token"
)

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
