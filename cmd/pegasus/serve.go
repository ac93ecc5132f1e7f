// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/pegasus-emu/pegasus/internal/auth"
	authpg "github.com/pegasus-emu/pegasus/internal/auth/postgres"
	"github.com/pegasus-emu/pegasus/internal/config"
	"github.com/pegasus-emu/pegasus/internal/logging"
	"github.com/pegasus-emu/pegasus/internal/observability"
	"github.com/pegasus-emu/pegasus/internal/server"
	"github.com/pegasus-emu/pegasus/internal/store"
	"github.com/pegasus-emu/pegasus/internal/wire"
)

// shutdownTimeout bounds the observability server's graceful stop.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		Long: `Start the game server: accept client connections, run the
authentication handshake, and manage signed-in sessions.`,
		RunE: runServe,
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("pegasus", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting game server",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
		"log_format", cfg.LogFormat,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	handler, err := buildAuthHandler(cfg, pool, logger)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, startErr := obs.Start()
		if startErr != nil {
			return startErr
		}
		go func() {
			if obsErr := <-obsErrCh; obsErr != nil {
				logger.Error("observability server error", "error", obsErr.Error())
				cancel()
			}
		}()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if stopErr := obs.Stop(stopCtx); stopErr != nil {
				logger.Warn("observability server stop failed", "error", stopErr.Error())
			}
		}()
		metrics = obs.Metrics()
	} else {
		// Metrics disabled: record into a registry nothing scrapes.
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	srv, err := server.NewServer(cfg.ListenAddr, server.NewSessionManager(), metrics, logger)
	if err != nil {
		return err
	}
	srv.Register(wire.OpcodeAuthenticate, server.MessageHandlerFunc(
		func(ctx context.Context, session *server.GameSession, msg *wire.Object) error {
			return handler.HandleAuthenticate(ctx, session, msg)
		},
	))

	return srv.Run(ctx)
}

// buildAuthHandler wires the handshake pipeline against the database pool.
func buildAuthHandler(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*auth.Handler, error) {
	validator, err := auth.NewValidator(cfg.ProtocolVersion, cfg.ReservedNames)
	if err != nil {
		return nil, err
	}

	defaultPrivileges, err := auth.ParsePrivilege(cfg.DefaultPrivileges)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	provisioner, err := auth.NewProvisionerWithLogger(
		authpg.NewAccountRepository(pool),
		auth.NewBcryptHasher(),
		defaultPrivileges,
		logger,
	)
	if err != nil {
		return nil, err
	}

	binder, err := auth.NewBinder(auth.NewSequenceCounter())
	if err != nil {
		return nil, err
	}

	return auth.NewHandlerWithLogger(validator, provisioner, binder, logger)
}
