// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package cache provides the LRU+TTL key set used to deduplicate purchase
// events in the ingest path.
//
//	dedupe := cache.NewLRUCache("purchase_dedupe", cfg.Dedupe.Capacity, cfg.Dedupe.TTL)
//	if dedupe.IsDuplicate(event.EventID) {
//	    return nil // already handled
//	}
//
// All operations are O(1) except CleanupExpired. Hits and evictions are
// exported as cache_hits_total and cache_evictions_total labeled by name.
package cache
