// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package recommend implements the purchase-pattern recommendation engine.
//
// # Architecture
//
// One RecommendationRecord is kept per (user, item). Each purchase updates
// the record's history, cadence (frequency), confidence, seasonal counters
// and feature vector. Ranking reads the user's records and combines:
//
//   - due factor: days since last purchase divided by frequency
//   - confidence of the cadence estimate
//   - seasonal fit for the current weekday and month
//   - similarity boost from similar items already on the user's lists
//
// Users with too few eligible items are supplemented from similar users
// (Jaccard similarity over purchased item sets).
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetStore(db)
//	engine.SetRefreshQueue(recommend.NewRefreshQueue(engine, cfg.Refresh, logger))
//
//	engine.RecordPurchase(ctx, item, userID)
//	recs := engine.Recommend(ctx, userID, listIDs)
//
// # Thread Safety
//
// The engine is safe for concurrent use. It keeps no in-process record
// cache: every operation reads and writes the Store, so concurrent updates
// of the same (user, item) pair are last-write-wins. Only one batch rebuild
// runs at a time.
package recommend
