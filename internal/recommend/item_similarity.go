// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend/similarity"
)

// UpdateItemSimilarities recomputes the similar-item lists of a user's
// records from their feature vectors. Users with too few records or too few
// vectors are left unchanged.
func (e *Engine) UpdateItemSimilarities(ctx context.Context, userID string) error {
	if e.store == nil {
		return ErrStoreNotSet
	}

	records, err := e.store.ListRecords(ctx, userID)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	cfg := e.config.Similarity
	if len(records) < cfg.MinRecords {
		return nil
	}

	candidates := comparableRecords(records)
	if len(candidates) < cfg.MinVectors {
		return nil
	}

	names := make([]string, len(candidates))
	vectors := make([][]float64, len(candidates))
	for i, rec := range candidates {
		names[i] = rec.ItemName
		vectors[i] = rec.FeatureVector
	}

	ranked := similarity.RankItems(names, vectors, cfg.ItemThreshold, cfg.MaxSimilarItems)

	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.store.UpdateSimilarItems(ctx, userID, name, ranked[name]); err != nil {
			errs = append(errs, fmt.Errorf("update similar items for %q: %w", name, err))
		}
	}

	e.logger.Debug().
		Str("user_id", userID).
		Int("items", len(names)).
		Int("errors", len(errs)).
		Msg("item similarities refreshed")

	return errors.Join(errs...)
}

// comparableRecords returns the records whose feature vector has the most
// common non-zero length. Records with other lengths are left out.
func comparableRecords(records []models.RecommendationRecord) []*models.RecommendationRecord {
	counts := make(map[int]int)
	for i := range records {
		if n := len(records[i].FeatureVector); n > 0 {
			counts[n]++
		}
	}

	best, bestCount := 0, 0
	for n, c := range counts {
		if c > bestCount || (c == bestCount && n > best) {
			best, bestCount = n, c
		}
	}

	out := make([]*models.RecommendationRecord, 0, bestCount)
	for i := range records {
		if best > 0 && len(records[i].FeatureVector) == best {
			out = append(out, &records[i])
		}
	}
	return out
}
