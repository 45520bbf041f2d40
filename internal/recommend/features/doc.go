// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package features derives purchase-cadence statistics from a purchase history.
//
// All functions are pure: they never mutate their input and take the
// reference time explicitly so results are reproducible.
//
// # Statistics
//
//   - Frequency: recency-weighted mean gap between purchases, in whole days
//   - Confidence: interval consistency blended with data volume, in [0, 1]
//   - Vector: fixed 27-dimension encoding used for item similarity
//
// Insufficient data is not an error. Frequency falls back to
// DefaultFrequency with fewer than two purchases and Confidence falls back
// to DefaultConfidence with fewer than three.
package features
