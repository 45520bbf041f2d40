// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/pantry/internal/metrics"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend/similarity"
)

// FindSimilarUsers returns the users whose purchased item sets are most
// similar to the target's by Jaccard similarity, best first (ties by user
// id). Targets with too few records get no similar users.
func (e *Engine) FindSimilarUsers(ctx context.Context, targetUserID string) ([]models.SimilarUser, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendationQuery("similar_users", time.Since(start), 0)
	}()

	if e.store == nil {
		return nil, ErrStoreNotSet
	}

	records, err := e.store.ListRecords(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("list target records: %w", err)
	}

	cfg := e.config.Similarity
	if len(records) < cfg.MinUserRecords {
		return []models.SimilarUser{}, nil
	}

	names := recordNames(records)
	target := similarity.NewSet(names)

	others, err := e.store.UserItemSets(ctx, targetUserID, names)
	if err != nil {
		return nil, fmt.Errorf("candidate users: %w", err)
	}

	users := make([]models.SimilarUser, 0, len(others))
	for userID, items := range others {
		set := similarity.NewSet(items)
		score := similarity.Jaccard(target, set)
		if score <= cfg.UserThreshold {
			continue
		}
		users = append(users, models.SimilarUser{
			UserID:      userID,
			Score:       score,
			CommonItems: similarity.Intersection(target, set),
		})
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Score != users[j].Score {
			return users[i].Score > users[j].Score
		}
		return users[i].UserID < users[j].UserID
	})

	if len(users) > cfg.MaxSimilarUsers {
		users = users[:cfg.MaxSimilarUsers]
	}
	return users, nil
}

// GetCollaborativeRecommendations scores the items that similar users buy
// reliably and the target has never bought. Each contributing user adds
// similarity * confidence to the item's score.
func (e *Engine) GetCollaborativeRecommendations(ctx context.Context, userID string) ([]models.CollaborativeCandidate, error) {
	users, err := e.FindSimilarUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []models.CollaborativeCandidate{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordRecommendationQuery("collaborative", time.Since(start), 0)
	}()

	own, err := e.store.ListRecords(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list target records: %w", err)
	}
	owned := similarity.NewSet(recordNames(own))

	byItem := make(map[string]*models.CollaborativeCandidate)
	minConf := e.config.Similarity.CollaborativeMinConfidence

	for _, u := range users {
		if u.Score <= 0 {
			continue
		}

		records, err := e.store.ListConfidentRecords(ctx, u.UserID, minConf)
		if err != nil {
			return nil, fmt.Errorf("list records for %s: %w", u.UserID, err)
		}

		for i := range records {
			rec := &records[i]
			if owned.Has(rec.ItemName) {
				continue
			}

			c, ok := byItem[rec.ItemName]
			if !ok {
				c = &models.CollaborativeCandidate{
					ItemName: rec.ItemName,
					Category: rec.Category,
					ImageURL: rec.ImageURL,
					Sources:  []string{},
				}
				byItem[rec.ItemName] = c
			}
			c.Score += u.Score * rec.Confidence
			c.Sources = append(c.Sources, u.UserID)
		}
	}

	out := make([]models.CollaborativeCandidate, 0, len(byItem))
	for _, c := range byItem {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ItemName < out[j].ItemName
	})

	return out, nil
}

func recordNames(records []models.RecommendationRecord) []string {
	names := make([]string, len(records))
	for i := range records {
		names[i] = records[i].ItemName
	}
	return names
}
