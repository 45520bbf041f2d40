// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// PurchaseEvent is one completed purchase of an item by a user.
// Events are immutable once recorded and ordered by Date.
type PurchaseEvent struct {
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	ItemName string    `json:"item_name"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	ImageURL string    `json:"image_url,omitempty"`
	ListID   string    `json:"list_id,omitempty"` // List the item was checked off from (optional)
}

// Item returns the item descriptor carried by the event.
func (e *PurchaseEvent) Item() PurchasedItem {
	return PurchasedItem{
		Name:     e.ItemName,
		Category: e.Category,
		Quantity: e.Quantity,
		Price:    e.Price,
		ImageURL: e.ImageURL,
		Date:     e.Date,
	}
}

// PurchasedItem describes the item handed to the recommendation engine when
// it transitions to purchased.
type PurchasedItem struct {
	Name     string
	Category string
	Quantity float64 // Defaults to 1 when <= 0
	Price    float64 // Defaults to 0 when negative
	ImageURL string
	Date     time.Time // Zero means "now"
}

// PurchaseEntry is one element of a record's bounded purchase history.
type PurchaseEntry struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
}

// ParsePrice parses a formatted price such as "3.49", "$3.49" or "1,299.00".
// Unparseable, negative or non-finite input yields 0.
func ParsePrice(formatted string) float64 {
	s := strings.TrimSpace(formatted)
	s = strings.TrimLeft(s, "$€£¥")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return SanitizePrice(v)
}

// SanitizePrice maps negative and non-finite prices to 0. NaN and Inf
// cannot be encoded as JSON, so they never reach a record.
func SanitizePrice(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SanitizeQuantity maps non-positive and non-finite quantities to 1.
func SanitizeQuantity(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}
