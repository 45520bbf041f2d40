// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"time"

	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend/features"
)

// normalizeItem applies purchase defaults: quantity 1, price 0, date now.
//
//nolint:gocritic // hugeParam
func normalizeItem(item models.PurchasedItem, now time.Time) models.PurchasedItem {
	item.Quantity = models.SanitizeQuantity(item.Quantity)
	item.Price = models.SanitizePrice(item.Price)
	if item.Date.IsZero() {
		item.Date = now
	}
	return item
}

// newRecord creates the record for a first purchase. Seasonal counters
// start empty; they count from the second purchase on.
func (e *Engine) newRecord(userID string, item *models.PurchasedItem, now time.Time) *models.RecommendationRecord {
	last := item.Date
	return &models.RecommendationRecord{
		UserID:          userID,
		ItemName:        item.Name,
		Category:        item.Category,
		ImageURL:        item.ImageURL,
		Frequency:       e.config.History.InitialFrequency,
		Confidence:      e.config.History.InitialConfidence,
		LastPurchased:   &last,
		PurchaseHistory: []models.PurchaseEntry{entryOf(item)},
		SimilarItems:    []models.SimilarItem{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// updateRecord folds a repeat purchase into rec.
func (e *Engine) updateRecord(rec *models.RecommendationRecord, item *models.PurchasedItem, now time.Time) {
	rec.PurchaseHistory = append(rec.PurchaseHistory, entryOf(item))
	if over := len(rec.PurchaseHistory) - e.config.History.Cap; over > 0 {
		rec.PurchaseHistory = append([]models.PurchaseEntry(nil), rec.PurchaseHistory[over:]...)
	}

	// An out-of-order event never moves LastPurchased backwards.
	if rec.LastPurchased == nil || item.Date.After(*rec.LastPurchased) {
		last := item.Date
		rec.LastPurchased = &last
	}

	features.AddSeasonal(&rec.SeasonalFactors, item.Date.In(e.loc))

	if len(rec.PurchaseHistory) >= 2 {
		rec.Frequency = features.Frequency(rec.PurchaseHistory)
		rec.Confidence = features.Confidence(rec.PurchaseHistory)
	}

	if item.Category != "" {
		rec.Category = item.Category
	}
	if item.ImageURL != "" {
		rec.ImageURL = item.ImageURL
	}
	if rec.SimilarItems == nil {
		rec.SimilarItems = []models.SimilarItem{}
	}
	rec.UpdatedAt = now
}

func entryOf(item *models.PurchasedItem) models.PurchaseEntry {
	return models.PurchaseEntry{
		Date:     item.Date,
		Quantity: item.Quantity,
		Price:    item.Price,
	}
}
