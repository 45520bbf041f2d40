// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package validation validates API request structs with
// go-playground/validator v10.
//
// A single validator instance is shared (it caches struct metadata). Field
// errors are reported under the struct's JSON names and converted to the
// API's VALIDATION_ERROR shape with ToAPIError.
//
// Custom rules:
//   - notblank: string is not empty after trimming
//   - itemname: notblank, at most 200 runes, no control characters
//
// Example:
//
//	type purchaseRequest struct {
//	    UserID   string  `json:"user_id" validate:"required,notblank,max=128"`
//	    ItemName string  `json:"item_name" validate:"required,itemname"`
//	    Quantity float64 `json:"quantity" validate:"gte=0,lte=10000"`
//	}
package validation
