// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend/features"
)

// Engine maintains recommendation records and ranks them for users.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	loc    *time.Location

	store     Store
	refresher Refresher
	clock     func() time.Time

	// Random source for refresh sampling (protected by rngMu)
	rng   *rand.Rand
	rngMu sync.Mutex

	// Only one rebuild at a time
	rebuildMu sync.Mutex

	purchasesRecorded atomic.Int64
	purchaseErrors    atomic.Int64
	refreshScheduled  atomic.Int64
	queries           atomic.Int64
	queryErrors       atomic.Int64
	rebuilds          atomic.Int64

	lastRebuild atomic.Pointer[RebuildReport]
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		loc:    cfg.Location(),
		clock:  time.Now,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for refresh sampling
	}, nil
}

// SetStore sets the record store.
func (e *Engine) SetStore(s Store) {
	e.store = s
}

// SetRefreshQueue sets where sampled similarity refreshes are submitted.
// Without one, refreshes run in their own goroutine.
func (e *Engine) SetRefreshQueue(r Refresher) {
	e.refresher = r
}

// SetClock replaces the time source. Intended for tests and replays.
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
}

// SetRand replaces the random source used for refresh sampling.
func (e *Engine) SetRand(rng *rand.Rand) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng = rng
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		PurchasesRecorded: e.purchasesRecorded.Load(),
		PurchaseErrors:    e.purchaseErrors.Load(),
		RefreshScheduled:  e.refreshScheduled.Load(),
		Queries:           e.queries.Load(),
		QueryErrors:       e.queryErrors.Load(),
		Rebuilds:          e.rebuilds.Load(),
	}
}

// RecordPurchase applies one purchase to the user's record for the item.
// Failures are logged and never surface to the caller: a purchase must not
// fail because its recommendation bookkeeping did.
//
//nolint:gocritic // hugeParam: item passed by value, it is normalized locally
func (e *Engine) RecordPurchase(ctx context.Context, item models.PurchasedItem, userID string) {
	if err := e.ApplyPurchase(ctx, item, userID); err != nil {
		e.logger.Error().Err(err).
			Str("user_id", userID).
			Str("item", item.Name).
			Msg("failed to record purchase")
	}
}

// ApplyPurchase is RecordPurchase with the error returned, for callers that
// retry (the WAL ingest path).
//
//nolint:gocritic // hugeParam: item passed by value, it is normalized locally
func (e *Engine) ApplyPurchase(ctx context.Context, item models.PurchasedItem, userID string) error {
	err := e.applyPurchase(ctx, item, userID)
	metrics.RecordPurchase(err)
	if err != nil {
		e.purchaseErrors.Add(1)
		return err
	}
	e.purchasesRecorded.Add(1)
	e.maybeScheduleRefresh(userID)
	return nil
}

//nolint:gocritic // hugeParam
func (e *Engine) applyPurchase(ctx context.Context, item models.PurchasedItem, userID string) error {
	if e.store == nil {
		return ErrStoreNotSet
	}
	if userID == "" || item.Name == "" {
		return ErrInvalidPurchase
	}

	now := e.now()
	item = normalizeItem(item, now)

	rec, err := e.store.GetRecord(ctx, userID, item.Name)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		rec = e.newRecord(userID, &item, now)
	case err != nil:
		return fmt.Errorf("get record: %w", err)
	default:
		e.updateRecord(rec, &item, now)
	}

	rec.FeatureVector = features.Vector(rec, now)

	if err := e.store.UpsertRecord(ctx, rec); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	e.logger.Debug().
		Str("user_id", userID).
		Str("item", item.Name).
		Int("frequency", rec.Frequency).
		Float64("confidence", rec.Confidence).
		Int("history", len(rec.PurchaseHistory)).
		Msg("purchase recorded")

	return nil
}

// maybeScheduleRefresh samples whether this purchase triggers a similarity
// refresh for the user.
func (e *Engine) maybeScheduleRefresh(userID string) {
	if !e.sample() {
		return
	}
	e.refreshScheduled.Add(1)

	if e.refresher != nil {
		if err := e.refresher.Submit(userID); err != nil {
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("similarity refresh not scheduled")
		}
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.config.Refresh.TaskTimeout)
		defer cancel()
		if err := e.UpdateItemSimilarities(ctx, userID); err != nil {
			e.logger.Error().Err(err).Str("user_id", userID).Msg("similarity refresh failed")
		}
	}()
}

func (e *Engine) sample() bool {
	rate := e.config.Refresh.SampleRate
	if rate <= 0 {
		return false
	}

	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Float64() < rate
}

func (e *Engine) now() time.Time {
	return e.clock()
}
