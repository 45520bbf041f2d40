// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package features

import (
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

// AddSeasonal counts a purchase at t in its weekday and month buckets.
// t is bucketed in its own location; callers convert it first.
func AddSeasonal(sf *models.SeasonalFactors, t time.Time) {
	sf.DayOfWeek[int(t.Weekday())]++
	sf.MonthOfYear[int(t.Month())-1]++
}

// SeasonalFromHistory counts every entry of history in loc.
func SeasonalFromHistory(history []models.PurchaseEntry, loc *time.Location) models.SeasonalFactors {
	var sf models.SeasonalFactors
	for _, p := range history {
		AddSeasonal(&sf, p.Date.In(loc))
	}
	return sf
}

// DayShare is the fraction of counted purchases made on weekday d,
// or 0 when nothing has been counted.
func DayShare(sf *models.SeasonalFactors, d time.Weekday) float64 {
	total := sum(sf.DayOfWeek[:])
	if total == 0 {
		return 0
	}
	return float64(sf.DayOfWeek[int(d)]) / float64(total)
}

// MonthShare is the fraction of counted purchases made in month m,
// or 0 when nothing has been counted.
func MonthShare(sf *models.SeasonalFactors, m time.Month) float64 {
	total := sum(sf.MonthOfYear[:])
	if total == 0 {
		return 0
	}
	return float64(sf.MonthOfYear[int(m)-1]) / float64(total)
}

// shares normalizes counts by their total, or returns a uniform
// distribution when there are no counts.
func shares(counts []int) []float64 {
	out := make([]float64, len(counts))
	total := sum(counts)
	for i, c := range counts {
		if total == 0 {
			out[i] = 1 / float64(len(counts))
			continue
		}
		out[i] = float64(c) / float64(total)
	}
	return out
}

func sum(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
