// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import "errors"

var (
	// ErrNotFound is returned by stores when a keyed lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPurchased is returned when a list item is marked purchased twice.
	ErrAlreadyPurchased = errors.New("list item already purchased")
)
