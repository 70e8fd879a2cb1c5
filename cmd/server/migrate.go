package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-tracker/internal/config"
	"github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters"
	"github.com/KirkDiggler/rpg-tracker/internal/telemetry"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations",
	Long:  `Apply pending schema migrations to the configured sqlite or postgres database.`,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}
	if !cfg.IsSQL() {
		return fmt.Errorf("storage %q has no migrations; set RPG_TRACKER_STORAGE to sqlite or postgres", cfg.Storage)
	}

	slog.SetDefault(telemetry.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openSQL(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	applied, err := encounters.Migrate(ctx, db)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	return nil
}
