// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/pantry/internal/eventprocessor"
	"github.com/tomtom215/pantry/internal/models"
)

// sourceHTTP tags purchases that arrive through the API.
const sourceHTTP = "http"

// resultNotRecorded is reported for a checked-off list item whose purchase
// the ingester rejected.
const resultNotRecorded = "not_recorded"

// PurchaseRequest reports a completed purchase.
//
// Price may be given as a number or, for receipts, as a formatted string
// such as "$1,299.00" in formatted_price.
type PurchaseRequest struct {
	EventID        string     `json:"event_id,omitempty" validate:"omitempty,max=128"`
	UserID         string     `json:"user_id" validate:"required,notblank,max=128"`
	ItemName       string     `json:"item_name" validate:"required,itemname"`
	Category       string     `json:"category,omitempty" validate:"omitempty,max=100"`
	Date           *time.Time `json:"date,omitempty"`
	Quantity       float64    `json:"quantity,omitempty" validate:"gte=0,lte=10000"`
	Price          float64    `json:"price,omitempty" validate:"gte=0"`
	FormattedPrice string     `json:"formatted_price,omitempty" validate:"omitempty,max=32"`
	ImageURL       string     `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	ListID         string     `json:"list_id,omitempty" validate:"omitempty,max=128"`
}

// PurchaseResponse says how an accepted purchase was handled.
type PurchaseResponse struct {
	EventID string           `json:"event_id"`
	Result  string           `json:"result"`
	Item    *models.ListItem `json:"item,omitempty"`
}

func (req *PurchaseRequest) event() *models.PurchaseEvent {
	event := &models.PurchaseEvent{
		EventID:  req.EventID,
		UserID:   req.UserID,
		ItemName: req.ItemName,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
		ImageURL: req.ImageURL,
		ListID:   req.ListID,
	}
	if event.Price == 0 && req.FormattedPrice != "" {
		event.Price = models.ParsePrice(req.FormattedPrice)
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	return event
}

// RecordPurchase ingests a purchase event. It answers 202 once the event is
// applied, recognised as a duplicate, or journaled for retry.
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PurchaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event := req.event()
	result, err := h.ingester.Ingest(r.Context(), event, sourceHTTP)
	if err != nil {
		respondIngestError(w, err)
		return
	}

	respondSuccess(w, http.StatusAccepted, PurchaseResponse{
		EventID: event.EventID,
		Result:  result.String(),
	}, start, -1)
}

func respondIngestError(w http.ResponseWriter, err error) {
	if errors.Is(err, eventprocessor.ErrMalformedEvent) {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}
	respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Purchase could not be recorded", err)
}
