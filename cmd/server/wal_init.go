// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/eventprocessor"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/supervisor"
	"github.com/tomtom215/pantry/internal/wal"
)

// initWAL opens the purchase journal, replays whatever a previous run left
// pending and registers the retry and compaction services. It returns nil
// when the WAL is disabled. The caller closes the returned WAL after the
// supervisor tree has stopped.
func initWAL(ctx context.Context, cfg *config.Config, ingester *eventprocessor.Ingester, tree *supervisor.SupervisorTree) (*wal.BadgerWAL, error) {
	if !cfg.WAL.Enabled {
		logging.Info().Msg("WAL disabled, purchases are applied without journaling")
		return nil, nil
	}

	walCfg := wal.FromSettings(&cfg.WAL)
	w, err := wal.Open(walCfg)
	if err != nil {
		return nil, fmt.Errorf("open WAL: %w", err)
	}
	ingester.SetJournal(w)

	result, err := ingester.Recover(ctx, w)
	if err != nil {
		// Entries that failed stay pending for the retry loop.
		logging.Warn().Err(err).Msg("WAL recovery finished with errors")
	}
	if result != nil && result.TotalPending > 0 {
		logging.Info().
			Int("pending", result.TotalPending).
			Int("recovered", result.Recovered).
			Int("failed", result.Failed).
			Int("expired", result.Expired).
			Dur("duration", result.Duration).
			Msg("WAL recovery complete")
	}

	tree.AddDataService(wal.NewRetryLoop(w, ingester))
	tree.AddDataService(wal.NewCompactor(w))

	logging.Info().
		Str("path", walCfg.Path).
		Bool("sync_writes", walCfg.SyncWrites).
		Msg("WAL enabled")
	return w, nil
}
