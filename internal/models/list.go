// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import "time"

// List is a shared grocery list. Only lists that are neither completed nor
// archived take part in recommendation filtering.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	Completed bool      `json:"completed"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// IsMember reports whether userID belongs to the list.
func (l *List) IsMember(userID string) bool {
	for _, m := range l.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// ListItem is an entry on a grocery list.
type ListItem struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Quantity  float64   `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
	Price     float64   `json:"price"`
	AddedBy   string    `json:"added_by"`
	Purchased bool      `json:"purchased"`
	CreatedAt time.Time `json:"created_at"`
}
