package main

import (
	"fmt"
	"log/slog"

	"github.com/anonto42/nano-chat/backend/internal/repositories"
	"github.com/anonto42/nano-chat/backend/pkg/config"
	"github.com/anonto42/nano-chat/backend/pkg/logging"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.Init(cfg.LogLevel)

		ctx := contextOrBackground(cmd.Context())
		db, err := config.InitDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initialize databases: %w", err)
		}
		defer db.CloseDB()

		if err := repositories.Migrate(ctx, db.Postgres); err != nil {
			return err
		}
		slog.Info("PostgreSQL auto-migrations completed")
		return nil
	},
}
