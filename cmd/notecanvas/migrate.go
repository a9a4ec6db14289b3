package main

import (
	"context"
	"fmt"

	"github.com/pscheid92/notecanvas/internal/adapter/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		pool, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
