// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import "time"

// RecommendationRecord is the purchase-pattern state kept for one
// (UserID, ItemName) pair.
type RecommendationRecord struct {
	UserID   string `json:"user_id"`
	ItemName string `json:"item_name"`
	Category string `json:"category"`
	ImageURL string `json:"image_url,omitempty"`

	// Frequency is the estimated number of days between purchases (>= 1).
	Frequency int `json:"frequency"`

	// Confidence is the reliability of Frequency in [0, 1].
	Confidence float64 `json:"confidence"`

	// LastPurchased is nil when no purchase is known.
	LastPurchased *time.Time `json:"last_purchased,omitempty"`

	// PurchaseHistory holds the most recent purchases in insertion order.
	PurchaseHistory []PurchaseEntry `json:"purchase_history"`

	SeasonalFactors SeasonalFactors `json:"seasonal_factors"`

	// FeatureVector is derived from the other fields on every update.
	FeatureVector []float64 `json:"feature_vector"`

	// SimilarItems is sorted by descending score and never names ItemName.
	SimilarItems []SimilarItem `json:"similar_items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeasonalFactors counts purchases per weekday (Sunday = 0) and per month
// (January = 0).
type SeasonalFactors struct {
	DayOfWeek   [7]int  `json:"day_of_week"`
	MonthOfYear [12]int `json:"month_of_year"`
}

// SimilarItem is another item bought in a correlated pattern.
type SimilarItem struct {
	ItemName string  `json:"item_name"`
	Score    float64 `json:"score"`
}

// SeasonalScore is the weekday and month fit of a recommendation.
type SeasonalScore struct {
	Day   float64 `json:"day"`
	Month float64 `json:"month"`
}

// Recommendation is a scored record returned to callers.
type Recommendation struct {
	RecommendationRecord

	Score           float64       `json:"score"`
	DueFactor       float64       `json:"due_factor"`
	DueInDays       int           `json:"due_in_days"`
	SeasonalScore   SeasonalScore `json:"seasonal_score"`
	SimilarityBoost float64       `json:"similarity_boost"`

	// Collaborative marks cold-start suggestions taken from similar users.
	Collaborative bool     `json:"is_collaborative,omitempty"`
	Sources       []string `json:"sources,omitempty"`
}

// SimilarUser is a user whose purchased item set overlaps the target's.
type SimilarUser struct {
	UserID      string   `json:"user_id"`
	Score       float64  `json:"score"`
	CommonItems []string `json:"common_items"`
}

// CollaborativeCandidate is an item suggested by similar users.
type CollaborativeCandidate struct {
	ItemName string   `json:"item_name"`
	Category string   `json:"category"`
	ImageURL string   `json:"image_url,omitempty"`
	Score    float64  `json:"score"`
	Sources  []string `json:"sources"`
}
