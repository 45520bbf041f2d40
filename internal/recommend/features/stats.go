// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package features

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

const (
	// DefaultFrequency is the cadence assumed until two purchases are known.
	DefaultFrequency = 14

	// InitialConfidence is assigned to a record on its first purchase.
	InitialConfidence = 0.3

	// DefaultConfidence is returned when fewer than three purchases are known.
	DefaultConfidence = 0.4

	day = 24 * time.Hour
)

// Days converts a duration to fractional days.
func Days(d time.Duration) float64 {
	return float64(d) / float64(day)
}

// SortedByDate returns a copy of history ordered oldest first.
// Entries with equal dates keep their relative order.
func SortedByDate(history []models.PurchaseEntry) []models.PurchaseEntry {
	sorted := make([]models.PurchaseEntry, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Gaps returns the day gaps between consecutive purchases, oldest first.
func Gaps(history []models.PurchaseEntry) []float64 {
	if len(history) < 2 {
		return nil
	}

	sorted := SortedByDate(history)
	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, Days(sorted[i].Date.Sub(sorted[i-1].Date)))
	}
	return gaps
}

// Frequency estimates the number of days between purchases.
// The i-th gap (1-indexed from the oldest) carries weight i, so recent
// habits dominate. The result is rounded and never below one day.
func Frequency(history []models.PurchaseEntry) int {
	if len(history) < 2 {
		return DefaultFrequency
	}

	gaps := Gaps(history)

	var weightedSum, totalWeight float64
	for i, g := range gaps {
		w := float64(i + 1)
		weightedSum += g * w
		totalWeight += w
	}

	freq := int(math.Round(weightedSum / totalWeight))
	if freq < 1 {
		return 1
	}
	return freq
}

// Confidence scores how reliable Frequency is for history.
//
//	cv          = stddev(gaps) / mean(gaps)   (1 when the mean is 0)
//	consistency = clamp(1 - cv/2, 0.3, 1)
//	quantity    = min(1, len(history)/10)
//	confidence  = 0.7*consistency + 0.3*quantity
func Confidence(history []models.PurchaseEntry) float64 {
	if len(history) < 3 {
		return DefaultConfidence
	}

	gaps := Gaps(history)
	mean, variance := meanVariance(gaps)

	cv := 1.0
	if mean > 0 {
		cv = math.Sqrt(variance) / mean
	}

	consistency := clamp(1-cv/2, 0.3, 1)
	quantity := math.Min(1, float64(len(history))/10)

	return 0.7*consistency + 0.3*quantity
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}

	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return mean, variance
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
