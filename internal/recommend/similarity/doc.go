// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package similarity provides the vector and set similarity measures used by
// the recommendation engine.
//
//   - MinMaxNormalize and Cosine compare items by their feature vectors
//   - Jaccard compares users by the sets of item names they buy
//   - RankItems builds the bounded, ranked similar-item lists
//
// Zero vectors and empty sets have similarity 0 rather than NaN.
package similarity
