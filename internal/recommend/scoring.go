// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend/features"
	"github.com/tomtom215/pantry/internal/recommend/similarity"
)

// GetRecommendations scores every eligible record of the user and returns
// them best first. Items already on the lists are excluded. When listIDs is
// empty the user's active lists are used.
//
// Ties keep the store's order (item name ascending).
func (e *Engine) GetRecommendations(ctx context.Context, userID string, listIDs []string) ([]models.Recommendation, error) {
	if e.store == nil {
		return nil, ErrStoreNotSet
	}

	listed, err := e.listedItems(ctx, userID, listIDs)
	if err != nil {
		return nil, err
	}
	return e.rank(ctx, userID, listed)
}

// Recommend returns at most Limits.TopN recommendations. When fewer than
// Limits.MinResults remain, items bought by similar users are added.
// Errors are logged and yield an empty result.
func (e *Engine) Recommend(ctx context.Context, userID string, listIDs []string) []models.Recommendation {
	start := time.Now()
	e.queries.Add(1)

	ctx, cancel := context.WithTimeout(ctx, e.config.Limits.QueryTimeout)
	defer cancel()

	recs, err := e.recommend(ctx, userID, listIDs)
	if err != nil {
		e.queryErrors.Add(1)
		e.logger.Error().Err(err).Str("user_id", userID).Msg("recommendation query failed")
		recs = []models.Recommendation{}
	}

	metrics.RecordRecommendationQuery("ranked", time.Since(start), len(recs))
	return recs
}

func (e *Engine) recommend(ctx context.Context, userID string, listIDs []string) ([]models.Recommendation, error) {
	if e.store == nil {
		return nil, ErrStoreNotSet
	}

	listed, err := e.listedItems(ctx, userID, listIDs)
	if err != nil {
		return nil, err
	}

	recs, err := e.rank(ctx, userID, listed)
	if err != nil {
		return nil, err
	}

	limits := e.config.Limits
	if len(recs) > limits.TopN {
		recs = recs[:limits.TopN]
	}
	if len(recs) >= limits.MinResults {
		return recs, nil
	}

	supplemented, err := e.supplement(ctx, userID, recs, listed)
	if err != nil {
		// The ranked part is still valid.
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("collaborative supplement failed")
		return recs, nil
	}
	return supplemented, nil
}

// listedItems resolves the lists and returns the unpurchased item names on them.
func (e *Engine) listedItems(ctx context.Context, userID string, listIDs []string) (similarity.Set, error) {
	if len(listIDs) == 0 {
		ids, err := e.store.ActiveListIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("active lists: %w", err)
		}
		listIDs = ids
	}
	if len(listIDs) == 0 {
		return similarity.Set{}, nil
	}

	names, err := e.store.UnpurchasedItemNames(ctx, listIDs)
	if err != nil {
		return nil, fmt.Errorf("listed items: %w", err)
	}
	return similarity.NewSet(names), nil
}

func (e *Engine) rank(ctx context.Context, userID string, listed similarity.Set) ([]models.Recommendation, error) {
	records, err := e.store.ListRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	now := e.now()
	local := now.In(e.loc)
	weekday, month := local.Weekday(), local.Month()
	sc := e.config.Scoring

	out := make([]models.Recommendation, 0, len(records))
	for i := range records {
		rec := &records[i]
		if listed.Has(rec.ItemName) || rec.LastPurchased == nil {
			continue
		}

		freq := rec.Frequency
		if freq < 1 {
			freq = 1
		}
		days := features.Days(now.Sub(*rec.LastPurchased))
		due := days / float64(freq)

		seasonal := models.SeasonalScore{
			Day:   features.DayShare(&rec.SeasonalFactors, weekday),
			Month: features.MonthShare(&rec.SeasonalFactors, month),
		}
		boost := similarityBoost(rec.SimilarItems, listed)

		if due < sc.MinDueFactor || rec.Confidence < sc.MinConfidence {
			continue
		}

		score := sc.DueWeight*due +
			sc.ConfidenceWeight*rec.Confidence +
			sc.DayWeight*seasonal.Day +
			sc.MonthWeight*seasonal.Month +
			sc.SimilarityWeight*boost

		out = append(out, models.Recommendation{
			RecommendationRecord: *rec,
			Score:                score,
			DueFactor:            due,
			DueInDays:            int(math.Max(0, math.Round(float64(freq)-days))),
			SeasonalScore:        seasonal,
			SimilarityBoost:      boost,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out, nil
}

// similarityBoost sums the scores of similar items that are on the lists.
func similarityBoost(similar []models.SimilarItem, listed similarity.Set) float64 {
	var boost float64
	for _, s := range similar {
		if listed.Has(s.ItemName) {
			boost += s.Score
		}
	}
	return boost
}

// supplement appends collaborative candidates until Limits.TopN.
func (e *Engine) supplement(ctx context.Context, userID string, recs []models.Recommendation, listed similarity.Set) ([]models.Recommendation, error) {
	candidates, err := e.GetCollaborativeRecommendations(ctx, userID)
	if err != nil {
		return nil, err
	}

	present := make(similarity.Set, len(recs))
	for i := range recs {
		present[recs[i].ItemName] = struct{}{}
	}

	cfg := e.config
	added := 0
	for _, c := range candidates {
		if len(recs) >= cfg.Limits.TopN {
			break
		}
		if present.Has(c.ItemName) || listed.Has(c.ItemName) {
			continue
		}

		recs = append(recs, models.Recommendation{
			RecommendationRecord: models.RecommendationRecord{
				UserID:          userID,
				ItemName:        c.ItemName,
				Category:        c.Category,
				ImageURL:        c.ImageURL,
				Frequency:       cfg.History.InitialFrequency,
				Confidence:      cfg.Similarity.CollaborativeConfidence,
				PurchaseHistory: []models.PurchaseEntry{},
				FeatureVector:   []float64{},
				SimilarItems:    []models.SimilarItem{},
			},
			Score:         c.Score * cfg.Similarity.CollaborativeDiscount,
			Collaborative: true,
			Sources:       c.Sources,
		})
		present[c.ItemName] = struct{}{}
		added++
	}

	if added > 0 {
		metrics.RecommendationSupplemented.Inc()
	}
	return recs, nil
}
