// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package models defines the data structures shared by the store, the
recommendation engine and the HTTP layer.

Key Components:

  - PurchaseEvent: an immutable completed purchase (the history log)
  - RecommendationRecord: per (user, item) purchase-pattern state
  - Recommendation: a scored record returned by the ranking pipeline
  - List, ListItem: grocery lists used to exclude already-listed items
  - SimilarUser, CollaborativeCandidate: collaborative-filtering results

The package has no dependencies on other internal packages.
*/
package models
