// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package features

import (
	"testing"
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

func TestVector_EmptyRecord(t *testing.T) {
	t.Parallel()

	v := Vector(&models.RecommendationRecord{}, base)
	if len(v) != VectorLength {
		t.Fatalf("len(Vector) = %d, want %d", len(v), VectorLength)
	}

	want := map[int]float64{
		IdxFrequency:     DefaultFrequency,
		IdxConfidence:    InitialConfidence,
		IdxHistoryLength: 0,
		IdxMeanQuantity:  1,
		IdxMeanPrice:     0,
		IdxGapVariance:   0,
		IdxRecentGap:     DefaultFrequency,
		IdxDaysSinceLast: 0,
	}
	for idx, w := range want {
		if v[idx] != w {
			t.Errorf("Vector[%d] = %v, want %v", idx, v[idx], w)
		}
	}

	for i := 0; i < 7; i++ {
		if !approxEqual(v[IdxDayOfWeek+i], 1.0/7) {
			t.Errorf("day share %d = %v, want 1/7", i, v[IdxDayOfWeek+i])
		}
	}
	for i := 0; i < 12; i++ {
		if !approxEqual(v[IdxMonthOfYear+i], 1.0/12) {
			t.Errorf("month share %d = %v, want 1/12", i, v[IdxMonthOfYear+i])
		}
	}
}

func TestVector_FixedLength(t *testing.T) {
	t.Parallel()

	for n := 0; n <= 25; n++ {
		days := make([]float64, n)
		for i := range days {
			days[i] = float64(i * 3)
		}
		rec := &models.RecommendationRecord{PurchaseHistory: historyAt(days...)}
		if got := len(Vector(rec, base)); got != VectorLength {
			t.Errorf("history of %d: len(Vector) = %d, want %d", n, got, VectorLength)
		}
	}
}

func TestVector_Components(t *testing.T) {
	t.Parallel()

	history := []models.PurchaseEntry{
		{Date: base, Quantity: 1, Price: 2},
		{Date: base.Add(2 * 24 * time.Hour), Quantity: 3, Price: 4},
		{Date: base.Add(6 * 24 * time.Hour), Quantity: 2, Price: 3},
	}
	last := history[2].Date
	rec := &models.RecommendationRecord{
		Frequency:       3,
		Confidence:      0.65,
		LastPurchased:   &last,
		PurchaseHistory: history,
		SeasonalFactors: SeasonalFromHistory(history, time.UTC),
	}

	now := last.Add(36 * time.Hour)
	v := Vector(rec, now)

	want := map[int]float64{
		IdxFrequency:     3,
		IdxConfidence:    0.65,
		IdxHistoryLength: 3,
		IdxMeanQuantity:  2,
		IdxMeanPrice:     3,
		IdxGapVariance:   1, // gaps 2 and 4
		IdxRecentGap:     4,
		IdxDaysSinceLast: 1.5,
	}
	for idx, w := range want {
		if !approxEqual(v[idx], w) {
			t.Errorf("Vector[%d] = %v, want %v", idx, v[idx], w)
		}
	}

	// Sunday, Tuesday, Saturday; all in January.
	if !approxEqual(v[IdxDayOfWeek+int(time.Sunday)], 1.0/3) {
		t.Errorf("Sunday share = %v, want 1/3", v[IdxDayOfWeek])
	}
	if v[IdxDayOfWeek+int(time.Monday)] != 0 {
		t.Errorf("Monday share = %v, want 0", v[IdxDayOfWeek+1])
	}
	if v[IdxMonthOfYear] != 1 {
		t.Errorf("January share = %v, want 1", v[IdxMonthOfYear])
	}
}

func TestVector_ZeroRecentGapFallsBackToMean(t *testing.T) {
	t.Parallel()

	rec := &models.RecommendationRecord{PurchaseHistory: historyAt(0, 4, 4)}
	v := Vector(rec, base)
	if !approxEqual(v[IdxRecentGap], 2) {
		t.Errorf("recent gap = %v, want mean 2", v[IdxRecentGap])
	}
}

func TestSeasonal(t *testing.T) {
	t.Parallel()

	var sf models.SeasonalFactors
	if DayShare(&sf, time.Monday) != 0 || MonthShare(&sf, time.March) != 0 {
		t.Error("shares of empty factors should be 0")
	}

	// Sunday in January, then Tuesday in December.
	AddSeasonal(&sf, base)
	AddSeasonal(&sf, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC))

	if sf.DayOfWeek[0] != 1 || sf.DayOfWeek[2] != 1 {
		t.Errorf("DayOfWeek = %v, want Sunday and Tuesday counted", sf.DayOfWeek)
	}
	if sf.MonthOfYear[0] != 1 || sf.MonthOfYear[11] != 1 {
		t.Errorf("MonthOfYear = %v, want January and December counted", sf.MonthOfYear)
	}
	if got := DayShare(&sf, time.Sunday); got != 0.5 {
		t.Errorf("DayShare(Sunday) = %v, want 0.5", got)
	}
	if got := MonthShare(&sf, time.December); got != 0.5 {
		t.Errorf("MonthShare(December) = %v, want 0.5", got)
	}
}

func TestSeasonalFromHistory_UsesLocation(t *testing.T) {
	t.Parallel()

	// 02:00 UTC on a Sunday is still Saturday evening in New York.
	loc := time.FixedZone("EST", -5*60*60)
	h := []models.PurchaseEntry{{Date: time.Date(2026, 1, 4, 2, 0, 0, 0, time.UTC)}}

	sf := SeasonalFromHistory(h, loc)
	if sf.DayOfWeek[int(time.Saturday)] != 1 {
		t.Errorf("DayOfWeek = %v, want Saturday counted", sf.DayOfWeek)
	}
}
