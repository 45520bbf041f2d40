// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package features

import (
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

// VectorLength is the number of dimensions produced by Vector.
const VectorLength = 27

// Vector index layout.
const (
	IdxFrequency = iota
	IdxConfidence
	IdxHistoryLength
	IdxMeanQuantity
	IdxMeanPrice
	IdxGapVariance
	IdxRecentGap
	IdxDaysSinceLast
	IdxDayOfWeek // 7 entries, Sunday first
)

// IdxMonthOfYear is the first of 12 month entries, January first.
const IdxMonthOfYear = IdxDayOfWeek + 7

// Vector encodes rec as a fixed-length feature vector relative to now.
// It is always rebuilt from scratch and never patched incrementally.
func Vector(rec *models.RecommendationRecord, now time.Time) []float64 {
	v := make([]float64, 0, VectorLength)

	freq := rec.Frequency
	if freq <= 0 {
		freq = DefaultFrequency
	}
	conf := rec.Confidence
	if conf == 0 {
		conf = InitialConfidence
	}

	v = append(v,
		float64(freq),
		conf,
		float64(len(rec.PurchaseHistory)),
		meanQuantity(rec.PurchaseHistory),
		meanPrice(rec.PurchaseHistory),
	)

	variance, recent := gapStats(rec.PurchaseHistory)
	v = append(v, variance, recent)

	var sinceLast float64
	if rec.LastPurchased != nil {
		sinceLast = Days(now.Sub(*rec.LastPurchased))
	}
	v = append(v, sinceLast)

	v = append(v, shares(rec.SeasonalFactors.DayOfWeek[:])...)
	v = append(v, shares(rec.SeasonalFactors.MonthOfYear[:])...)

	return v
}

func meanQuantity(history []models.PurchaseEntry) float64 {
	if len(history) == 0 {
		return 1
	}
	var total float64
	for _, p := range history {
		total += p.Quantity
	}
	return total / float64(len(history))
}

func meanPrice(history []models.PurchaseEntry) float64 {
	if len(history) == 0 {
		return 0
	}
	var total float64
	for _, p := range history {
		total += p.Price
	}
	return total / float64(len(history))
}

// gapStats returns the population variance of the purchase gaps and the
// most recent gap. A zero most-recent gap falls back to the mean gap.
func gapStats(history []models.PurchaseEntry) (variance, recent float64) {
	gaps := Gaps(history)
	if len(gaps) == 0 {
		return 0, DefaultFrequency
	}

	mean, variance := meanVariance(gaps)
	recent = gaps[len(gaps)-1]
	if recent == 0 {
		recent = mean
	}
	return variance, recent
}
