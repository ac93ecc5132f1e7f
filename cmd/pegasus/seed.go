// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pegasus-emu/pegasus/internal/auth"
	authpg "github.com/pegasus-emu/pegasus/internal/auth/postgres"
	"github.com/pegasus-emu/pegasus/internal/config"
	"github.com/pegasus-emu/pegasus/internal/store"
)

// Default timeout for the seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed subcommand.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// seedAccount is one account entry in the seed file.
type seedAccount struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Privileges string `yaml:"privileges"`
}

// seedFile is the YAML document the seed command consumes.
type seedFile struct {
	Accounts []seedAccount `yaml:"accounts"`
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed accounts from a YAML file",
		Long: `Create accounts listed in a YAML seed file. Passwords are hashed
before storage. The command is idempotent: usernames that already exist are
skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "seeds.yaml", "path to the account seed file")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().String("database-url", config.Default().DatabaseURL, "PostgreSQL connection string")

	return cmd
}

// parseSeedFile decodes and validates a seed document.
func parseSeedFile(data []byte) (*seedFile, error) {
	var seeds seedFile
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, oops.Code("SEED_FILE_INVALID").
			With("operation", "parse seed file").
			Wrap(err)
	}

	for i, account := range seeds.Accounts {
		if account.Username == "" {
			return nil, oops.Code("SEED_FILE_INVALID").
				With("entry", i).
				Errorf("account entry %d has no username", i)
		}
		if account.Password == "" {
			return nil, oops.Code("SEED_FILE_INVALID").
				With("entry", i).
				With("username", account.Username).
				Errorf("account %q has no password", account.Username)
		}
		if account.Privileges != "" {
			if _, err := auth.ParsePrivilege(account.Privileges); err != nil {
				return nil, oops.Code("SEED_FILE_INVALID").
					With("username", account.Username).
					Wrap(err)
			}
		}
	}
	return &seeds, nil
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	appCfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cfg.file)
	if err != nil {
		return oops.Code("SEED_FILE_INVALID").
			With("path", cfg.file).
			Wrap(err)
	}
	seeds, err := parseSeedFile(data)
	if err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM, bounded by the timeout.
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.NewPool(ctx, appCfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := authpg.NewAccountRepository(pool)
	hasher := auth.NewBcryptHasher()

	created, skipped := 0, 0
	for _, entry := range seeds.Accounts {
		privileges, err := auth.ParsePrivilege(appCfg.DefaultPrivileges)
		if err != nil {
			return oops.Code("CONFIG_INVALID").Wrap(err)
		}
		if entry.Privileges != "" {
			privileges, err = auth.ParsePrivilege(entry.Privileges)
			if err != nil {
				return err
			}
		}

		hash, err := hasher.Hash(entry.Password)
		if err != nil {
			return oops.Code("SEED_FAILED").
				With("username", entry.Username).
				Wrap(err)
		}

		account, err := auth.NewAccount(entry.Username, hash, "", privileges)
		if err != nil {
			return oops.Code("SEED_FAILED").
				With("username", entry.Username).
				Wrap(err)
		}

		if err := repo.Create(ctx, account); err != nil {
			if errors.Is(err, auth.ErrUsernameTaken) {
				cmd.Printf("Account %q already exists, skipping\n", entry.Username)
				skipped++
				continue
			}
			return err
		}
		created++
	}

	cmd.Printf("Seeded %d account(s), skipped %d existing\n", created, skipped)
	return nil
}
