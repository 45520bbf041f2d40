// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package main

import (
	"fmt"

	"github.com/tomtom215/pantry/internal/cache"
	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/database"
	"github.com/tomtom215/pantry/internal/eventprocessor"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/recommend"
	"github.com/tomtom215/pantry/internal/supervisor"
	"github.com/tomtom215/pantry/internal/supervisor/services"
)

// initEngine creates the recommendation engine and registers its background
// services: the similarity refresh queue and, when configured, the rebuild
// scheduler.
func initEngine(cfg *config.Config, db *database.DB, tree *supervisor.SupervisorTree) (*recommend.Engine, error) {
	engCfg := cfg.Recommend.EngineConfig(cfg.Refresh, cfg.Rebuild)

	engine, err := recommend.NewEngine(engCfg, logging.WithComponent("recommend"))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetStore(db)

	queue := recommend.NewRefreshQueue(engine, engCfg.Refresh, logging.WithComponent("refresh-queue"))
	engine.SetRefreshQueue(queue)
	tree.AddEngineService(queue)

	if cfg.Rebuild.OnStartup || cfg.Rebuild.Interval > 0 {
		tree.AddEngineService(services.NewRebuildSchedulerService(engine, services.RebuildSchedulerConfig{
			OnStartup: cfg.Rebuild.OnStartup,
			Interval:  cfg.Rebuild.Interval,
		}, logging.WithComponent("rebuild")))
		logging.Info().
			Bool("on_startup", cfg.Rebuild.OnStartup).
			Dur("interval", cfg.Rebuild.Interval).
			Msg("Rebuild scheduler added to supervisor tree")
	}

	logging.Info().
		Str("timezone", engCfg.Timezone).
		Int("refresh_workers", engCfg.Refresh.Workers).
		Msg("Recommendation engine initialized")
	return engine, nil
}

// newIngester builds the purchase pipeline shared by HTTP and NATS.
func newIngester(cfg *config.Config, engine *recommend.Engine, db *database.DB) (*eventprocessor.Ingester, error) {
	ingester, err := eventprocessor.NewIngester(engine, db)
	if err != nil {
		return nil, err
	}

	ingester.SetEventLogger(logging.NewEventLoggerWithLogger(logging.WithComponent("ingest")))

	natsCfg := eventprocessor.FromSettings(&cfg.NATS)
	ingester.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(natsCfg.Breaker, logging.WithComponent("breaker")))

	if dedupe := newDeduplicator(&cfg.Dedupe); dedupe != nil {
		ingester.SetDeduplicator(dedupe)
		logging.Info().
			Int("capacity", cfg.Dedupe.Capacity).
			Dur("ttl", cfg.Dedupe.TTL).
			Msg("Purchase deduplication enabled")
	}
	return ingester, nil
}

// newDeduplicator returns nil when deduplication is disabled.
func newDeduplicator(cfg *config.DedupeConfig) *cache.LRUCache {
	if !cfg.Enabled {
		return nil
	}
	return cache.NewLRUCache("purchase-dedupe", cfg.Capacity, cfg.TTL)
}
