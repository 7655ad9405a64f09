// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package main is the entry point for the Convive server.
//
// Convive forms balanced dinner groups from a pool of registered users,
// scoring pairwise compatibility from questionnaire profiles and
// optimizing group assignments with local search.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config.yaml, and
//     CONVIVE_* environment variables (Koanf v2)
//  2. Logging: global zerolog logger
//  3. Storage: embedded BadgerDB for users, profiles, sessions, pair
//     scores, and run history
//  4. Scoring: questionnaire provider wrapped in persistence, circuit
//     breaker, rate limiter, and in-run memoization decorators
//  5. Matching engine: matrix builder, size planner, local-search
//     optimizer, repairer, and session materializer
//  6. Supervision: suture tree with data, matching, and api layers
//  7. HTTP server: REST API plus Prometheus /metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (CONVIVE_SERVER_PORT, ...)
//   - Config file (config.yaml, or CONVIVE_CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (server timeout)
//   - Stops the scheduled matcher
//   - Closes the BadgerDB store
//
// # Example Usage
//
// Development with an in-memory store:
//
//	export CONVIVE_STORAGE_PATH=""
//	export CONVIVE_LOGGING_LEVEL=debug
//	./convive
//
// Production with scheduled matching:
//
//	export CONVIVE_STORAGE_PATH=/data/convive
//	export CONVIVE_SCHEDULER_ENABLED=true
//	export CONVIVE_SCHEDULER_RESTAURANT_ID=rest-42
//	export CONVIVE_SCHEDULER_CREATOR_USER_ID=admin
//	./convive
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/afrantzeskakis/convive/internal/api"
	"github.com/afrantzeskakis/convive/internal/backup"
	"github.com/afrantzeskakis/convive/internal/config"
	"github.com/afrantzeskakis/convive/internal/logging"
	"github.com/afrantzeskakis/convive/internal/supervisor"
	"github.com/afrantzeskakis/convive/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Convive with supervisor tree")
	if cfg.Storage.Path == "" {
		logging.Warn().Msg("Storage path empty - using in-memory store, data is lost on restart")
	}
	logging.Info().
		Str("listen_addr", cfg.ListenAddr()).
		Str("storage_path", cfg.Storage.Path).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Configuration loaded")

	components, err := initMatching(cfg, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize matching components")
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	if cfg.Backup.Enabled {
		manager, err := backup.NewManager(components.DB, cfg.Backup, logging.Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize backup manager")
		}
		tree.AddDataService(services.NewBackupService(manager, cfg.Backup.Interval, logging.Logger()))
		logging.Info().
			Str("dir", cfg.Backup.Dir).
			Dur("interval", cfg.Backup.Interval).
			Msg("Snapshot service added to supervisor tree")
	}

	if cfg.Scheduler.Enabled {
		schedulerSvc := services.NewSchedulerService(
			components.Users,
			components.Engine,
			components.Runs,
			services.SchedulerConfig{
				Interval:      cfg.Scheduler.Interval,
				MinCandidates: cfg.Scheduler.MinCandidates,
				RestaurantID:  cfg.Scheduler.RestaurantID,
				CreatorUserID: cfg.Scheduler.CreatorUserID,
			},
			logging.Logger(),
		)
		tree.AddMatchingService(schedulerSvc)
		logging.Info().
			Dur("interval", cfg.Scheduler.Interval).
			Msg("Scheduled matcher added to supervisor tree")
	}

	handlers := api.NewHandlers(components.Engine, components.Users, components.Runs)
	router := api.NewRouter(api.RouterConfig{
		CORSOrigins:        cfg.Server.CORSOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, handlers)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Serving")
	errCh := tree.ServeBackground(ctx)
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor shutdown error")
		os.Exit(1)
	}

	logging.Info().Msg("Shutdown complete")
}
