package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const minSessionSecretLength = 32

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	AppURL        string `env:"APP_URL" default:"http://localhost:8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL"`
	SessionSecret string `env:"SESSION_SECRET"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	CanvasDebounce       time.Duration `env:"CANVAS_DEBOUNCE" default:"500ms"`
	CanvasSavedIndicator time.Duration `env:"CANVAS_SAVED_INDICATOR" default:"2s"`

	AdminDisplayName string  `env:"ADMIN_DISPLAY_NAME" default:"admin"`
	RateLimitAuth    float64 `env:"RATE_LIMIT_AUTH" default:"5"` // requests per second per IP
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := []struct{ name, value string }{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"REDIS_URL", cfg.RedisURL},
		{"SESSION_SECRET", cfg.SessionSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if len(cfg.SessionSecret) < minSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLength)
	}
	if cfg.CanvasDebounce <= 0 {
		return errors.New("CANVAS_DEBOUNCE must be positive")
	}
	if cfg.CanvasSavedIndicator <= 0 {
		return errors.New("CANVAS_SAVED_INDICATOR must be positive")
	}
	if cfg.RateLimitAuth <= 0 {
		return errors.New("RATE_LIMIT_AUTH must be positive")
	}

	if cfg.IsProduction() {
		mode, err := sslMode(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("DATABASE_URL is invalid: %w", err)
		}
		if mode == "disable" || mode == "allow" {
			return fmt.Errorf("DATABASE_URL sslmode=%s is not allowed in production", mode)
		}
	}

	return nil
}

func sslMode(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Query().Get("sslmode")), nil
}

// Tools is the subset of the configuration the admin CLI needs.
type Tools struct {
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`
}

func LoadTools() (*Tools, error) {
	_ = godotenv.Load()

	var cfg Tools
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return &cfg, nil
}
