package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/adapter/httpserver"
	"github.com/pscheid92/notecanvas/internal/adapter/metrics"
	"github.com/pscheid92/notecanvas/internal/adapter/postgres"
	"github.com/pscheid92/notecanvas/internal/adapter/redis"
	"github.com/pscheid92/notecanvas/internal/adapter/websocket"
	"github.com/pscheid92/notecanvas/internal/app"
	"github.com/pscheid92/notecanvas/internal/canvas"
	"github.com/pscheid92/notecanvas/internal/platform/config"
	"github.com/pscheid92/notecanvas/internal/platform/logging"
	"github.com/pscheid92/notecanvas/internal/platform/retry"
	goredis "github.com/redis/go-redis/v9"
)

const (
	connectTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// connectPolicy covers containers that start alongside the service.
func connectPolicy(clock clockwork.Clock, what string) retry.Policy {
	return retry.Policy{
		MaxAttempts:    6,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		Clock:          clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Connection attempt failed", "target", what, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(ctx context.Context, cfg *config.Config, clock clockwork.Clock, m *metrics.DatabaseMetrics) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := retry.Do(ctx, connectPolicy(clock, "postgres"), retry.AlwaysRetry, func(ctx context.Context) (*pgxpool.Pool, error) {
		return postgres.Connect(ctx, cfg.DatabaseURL, m)
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config, clock clockwork.Clock, m *metrics.RedisMetrics) *goredis.Client {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := retry.Do(ctx, connectPolicy(clock, "redis"), retry.AlwaysRetry, func(ctx context.Context) (*goredis.Client, error) {
		return redis.NewClient(ctx, cfg.RedisURL, m)
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()
	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	reg := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)
	canvasMetrics := metrics.NewCanvasMetrics(reg)
	socketMetrics := metrics.NewWebSocketMetrics(reg)
	redisMetrics := metrics.NewRedisMetrics(reg)
	dbMetrics := metrics.NewDatabaseMetrics(reg)
	authMetrics := metrics.NewAuthMetrics(reg)

	ctx := context.Background()
	pool := setupDB(ctx, cfg, clock, dbMetrics)
	defer pool.Close()

	redisClient := setupRedis(ctx, cfg, clock, redisMetrics)
	defer func() { _ = redisClient.Close() }()

	noteRepo := postgres.NewNoteRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	sessionStore := redis.NewSessionStore(redisClient, clock)

	identity, err := app.NewIdentity(userRepo, sessionStore, clock, cfg.SessionMaxAge, authMetrics)
	if err != nil {
		slog.Error("Failed to create identity service", "error", err)
		os.Exit(1)
	}

	canvasHandler := websocket.NewCanvasHandler(noteRepo, clock, websocket.HandlerConfig{
		Canvas: canvas.Config{
			Debounce:       cfg.CanvasDebounce,
			SavedIndicator: cfg.CanvasSavedIndicator,
		},
		CheckOrigin:   websocket.NewCheckOrigin(cfg.AppURL, !cfg.IsProduction()),
		SocketMetrics: socketMetrics,
		CanvasMetrics: canvasMetrics,
	})

	services := httpserver.Services{
		Identity: identity,
		Notes:    app.NewNotes(noteRepo),
		Calendar: app.NewCalendar(postgres.NewCalendarRepo(pool), clock),
		Food:     app.NewFood(postgres.NewFoodRepo(pool)),
		Tiers:    app.NewTierList(postgres.NewTierRepo(pool), cfg.AdminDisplayName),
		Canvas:   canvasHandler,
	}

	srv := httpserver.NewServer(cfg, services,
		httpserver.WithMetrics(httpMetrics, metrics.Handler(reg)),
		httpserver.WithHealthChecks(
			httpserver.HealthCheck{Name: "postgres", Check: pool.Ping},
			httpserver.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		),
	)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
