package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/notecanvas/internal/adapter/postgres"
	"github.com/pscheid92/notecanvas/internal/platform/config"
	"github.com/pscheid92/notecanvas/internal/platform/logging"
	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "notecanvas",
	Short:         "Administer a notecanvas installation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openDatabase loads the tool configuration, sets up logging and connects.
func openDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.LoadTools()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logging.InitLogger(level, cfg.LogFormat)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return pool, nil
}
