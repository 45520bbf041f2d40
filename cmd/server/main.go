// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package main is the entry point for the Pantry server.
//
// Pantry learns how often each household member buys each grocery item and
// suggests what is due. The server initializes components in this order:
//
//  1. Configuration: defaults, optional config.yaml and environment (Koanf v2)
//  2. Database: DuckDB with the records, purchase log and lists
//  3. Engine: recommendation engine and similarity refresh queue
//  4. WAL (optional): BadgerDB journal for purchases, replayed at startup
//  5. Ingest: deduplicating, circuit-broken purchase pipeline
//  6. NATS (optional): embedded or external JetStream purchase consumer
//  7. HTTP server: chi router with the /api/v1 routes
//
// Everything long-running is added to a suture supervisor tree, which stops
// in order on SIGINT or SIGTERM.
//
// # Example Usage
//
//	export DATABASE_PATH=/data/pantry.duckdb
//	export NATS_ENABLED=true
//	export NATS_EMBEDDED_SERVER=true
//	export WAL_ENABLED=true
//	./pantry
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/pantry/internal/api"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/database"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/supervisor"
	"github.com/tomtom215/pantry/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Version:   version,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Msg("Starting Pantry")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	engine, err := initEngine(cfg, db, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	ingester, err := newIngester(cfg, engine, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize purchase ingest")
	}

	journal, err := initWAL(ctx, cfg, ingester, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize WAL")
	}
	if journal != nil {
		defer func() {
			if err := journal.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing WAL")
			}
		}()
	}

	messaging, err := initNATS(ctx, cfg, ingester, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS")
	}
	defer messaging.Close()

	handler := api.NewHandler(engine, db, ingester, version)
	if messaging != nil {
		handler.SetNATSStatus(messaging.Connected)
	}
	if journal != nil {
		handler.SetWALPending(func() int64 { return journal.Stats().PendingCount })
	}

	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Pantry stopped")
}
