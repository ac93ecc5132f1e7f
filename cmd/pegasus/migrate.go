// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/pegasus-emu/pegasus/internal/config"
	"github.com/pegasus-emu/pegasus/internal/store"
)

// migrateConfig holds configuration for the migrate subcommand.
type migrateConfig struct {
	down  bool
	steps int
	force int
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply pending database migrations. With --down, roll everything
back (destructive). With --steps, apply that many migrations (negative rolls
back). With --force, set the version without running migrations (recovery
from a dirty state only).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&cfg.steps, "steps", 0, "number of migrations to apply (negative = down)")
	cmd.Flags().IntVar(&cfg.force, "force", -1, "force the migration version (recovery only)")
	cmd.Flags().String("database-url", config.Default().DatabaseURL, "PostgreSQL connection string")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string, cfg *migrateConfig) error {
	appCfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(appCfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()

	switch {
	case cfg.force >= 0:
		if err := migrator.Force(cfg.force); err != nil {
			return err
		}
		cmd.Printf("Forced migration version to %d\n", cfg.force)

	case cfg.down:
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rolled back all migrations")

	case cfg.steps != 0:
		if err := migrator.Steps(cfg.steps); err != nil {
			return err
		}
		cmd.Printf("Applied %d migration step(s)\n", cfg.steps)

	default:
		if err := migrator.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Schema version: %d (dirty: %v)\n", version, dirty)
	return nil
}
