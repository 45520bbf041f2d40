// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend/features"
)

// BuildRecommendationsFromHistory replays the full purchase log into
// recommendation records. Each (user, item) pair with at least two
// purchases is recomputed from its complete history and upserted; then the
// user's item similarities are refreshed.
//
// Failures of single pairs are logged and counted, and the run continues.
// Cancelling ctx stops the run between pairs; records written so far stay
// valid. With a fixed clock, running it twice yields the same records.
func (e *Engine) BuildRecommendationsFromHistory(ctx context.Context) (*RebuildReport, error) {
	if e.store == nil {
		return nil, ErrStoreNotSet
	}
	if !e.rebuildMu.TryLock() {
		return nil, ErrRebuildInProgress
	}
	defer e.rebuildMu.Unlock()

	start := time.Now()
	now := e.now()
	report := &RebuildReport{StartedAt: now}
	e.rebuilds.Add(1)

	events, err := e.store.ListPurchaseEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchase events: %w", err)
	}
	report.Events = len(events)

	groups := groupEvents(events)
	report.Users = len(groups.users)
	limiter := e.rebuildLimiter()

	e.logger.Info().
		Int("events", report.Events).
		Int("users", report.Users).
		Msg("rebuild started")

	for _, userID := range groups.users {
		items := groups.items[userID]
		for _, name := range items.names {
			if err := ctx.Err(); err != nil {
				return e.finishRebuild(report, start), fmt.Errorf("rebuild interrupted: %w", err)
			}

			report.Groups++
			history := items.events[name]
			if len(history) < 2 {
				report.Skipped++
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				return e.finishRebuild(report, start), fmt.Errorf("rebuild interrupted: %w", err)
			}

			if err := e.rebuildRecord(ctx, userID, history, now); err != nil {
				report.Failed++
				e.logger.Error().Err(err).
					Str("user_id", userID).
					Str("item", name).
					Msg("rebuild of record failed")
				continue
			}
			report.Upserted++
		}

		if err := e.UpdateItemSimilarities(ctx, userID); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return e.finishRebuild(report, start), fmt.Errorf("rebuild interrupted: %w", err)
			}
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("similarity refresh after rebuild failed")
		}
	}

	e.finishRebuild(report, start)
	e.logger.Info().
		Int("groups", report.Groups).
		Int("upserted", report.Upserted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("rebuild complete")

	return report, nil
}

// LastRebuild returns the report of the most recent rebuild, or nil.
func (e *Engine) LastRebuild() *RebuildReport {
	return e.lastRebuild.Load()
}

func (e *Engine) finishRebuild(report *RebuildReport, start time.Time) *RebuildReport {
	report.Duration = time.Since(start)
	e.lastRebuild.Store(report)
	metrics.RecordRebuild(report.Duration, report.Upserted, report.Skipped, report.Failed)
	return report
}

func (e *Engine) rebuildLimiter() *rate.Limiter {
	cfg := e.config.Rebuild
	if cfg.MaxUpsertsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(cfg.MaxUpsertsPerSecond), cfg.Burst)
}

// rebuildRecord recomputes one record from its events, sorted by date.
func (e *Engine) rebuildRecord(ctx context.Context, userID string, events []models.PurchaseEvent, now time.Time) error {
	full := make([]models.PurchaseEntry, len(events))
	for i := range events {
		ev := &events[i]
		q := ev.Quantity
		if q <= 0 {
			q = 1
		}
		p := ev.Price
		if p < 0 {
			p = 0
		}
		full[i] = models.PurchaseEntry{Date: ev.Date, Quantity: q, Price: p}
	}

	latest := &events[len(events)-1]
	last := latest.Date

	stored := full
	if over := len(full) - e.config.History.Cap; over > 0 {
		stored = full[over:]
	}

	rec := &models.RecommendationRecord{
		UserID:          userID,
		ItemName:        latest.ItemName,
		Category:        latestNonEmpty(events, func(ev *models.PurchaseEvent) string { return ev.Category }),
		ImageURL:        latestNonEmpty(events, func(ev *models.PurchaseEvent) string { return ev.ImageURL }),
		Frequency:       features.Frequency(full),
		Confidence:      features.Confidence(full),
		LastPurchased:   &last,
		PurchaseHistory: append([]models.PurchaseEntry(nil), stored...),
		SeasonalFactors: features.SeasonalFromHistory(full, e.loc),
		SimilarItems:    []models.SimilarItem{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	existing, err := e.store.GetRecord(ctx, userID, rec.ItemName)
	switch {
	case errors.Is(err, ErrRecordNotFound):
	case err != nil:
		return fmt.Errorf("get record: %w", err)
	default:
		rec.CreatedAt = existing.CreatedAt
		if existing.SimilarItems != nil {
			rec.SimilarItems = existing.SimilarItems
		}
	}

	rec.FeatureVector = features.Vector(rec, now)

	if err := e.store.UpsertRecord(ctx, rec); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func latestNonEmpty(events []models.PurchaseEvent, field func(*models.PurchaseEvent) string) string {
	for i := len(events) - 1; i >= 0; i-- {
		if v := field(&events[i]); v != "" {
			return v
		}
	}
	return ""
}

type userItems struct {
	names  []string
	events map[string][]models.PurchaseEvent
}

type eventGroups struct {
	users []string
	items map[string]*userItems
}

// groupEvents groups events by user and item name, both sorted, with each
// group's events sorted by date. Events without a user or item are dropped.
func groupEvents(events []models.PurchaseEvent) eventGroups {
	g := eventGroups{items: make(map[string]*userItems)}

	for i := range events {
		ev := events[i]
		if ev.UserID == "" || ev.ItemName == "" {
			continue
		}
		u, ok := g.items[ev.UserID]
		if !ok {
			u = &userItems{events: make(map[string][]models.PurchaseEvent)}
			g.items[ev.UserID] = u
			g.users = append(g.users, ev.UserID)
		}
		if _, ok := u.events[ev.ItemName]; !ok {
			u.names = append(u.names, ev.ItemName)
		}
		u.events[ev.ItemName] = append(u.events[ev.ItemName], ev)
	}

	sort.Strings(g.users)
	for _, u := range g.items {
		sort.Strings(u.names)
		for name, evs := range u.events {
			sort.SliceStable(evs, func(i, j int) bool {
				return evs[i].Date.Before(evs[j].Date)
			})
			u.events[name] = evs
		}
	}
	return g
}
