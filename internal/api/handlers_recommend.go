// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend"
)

// defaultCategory is used for items added without a known category.
const defaultCategory = "Other"

// AddToListRequest adds a recommended item to a shopping list.
type AddToListRequest struct {
	UserID   string  `json:"user_id" validate:"required,notblank,max=128"`
	ListID   string  `json:"list_id" validate:"required,notblank,max=128"`
	ItemName string  `json:"item_name" validate:"required,itemname"`
	Category string  `json:"category,omitempty" validate:"omitempty,max=100"`
	ImageURL string  `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	Quantity float64 `json:"quantity,omitempty" validate:"gte=0,lte=10000"`
}

// Recommendations returns the ranked recommendations of a user.
//
// Query: user_id (required), list_id (repeatable or comma-separated). Without
// list_id every active list of the user is excluded from the result.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	recs := h.engine.Recommend(r.Context(), userID, queryValues(r, "list_id"))
	if recs == nil {
		recs = []models.Recommendation{}
	}
	respondSuccess(w, http.StatusOK, recs, start, len(recs))
}

// SimilarUsers returns the users whose purchases overlap the user's.
func (h *Handler) SimilarUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	users, err := h.engine.FindSimilarUsers(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to find similar users", err)
		return
	}
	respondSuccess(w, http.StatusOK, users, start, len(users))
}

// Collaborative returns items similar users buy that the user has not bought.
func (h *Handler) Collaborative(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	candidates, err := h.engine.GetCollaborativeRecommendations(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to compute collaborative recommendations", err)
		return
	}
	respondSuccess(w, http.StatusOK, candidates, start, len(candidates))
}

// Rebuild recomputes every record from the purchase log. It runs in the
// request and is not bound by the handler timeout.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	report, err := h.engine.BuildRecommendationsFromHistory(r.Context())
	switch {
	case errors.Is(err, recommend.ErrRebuildInProgress):
		respondError(w, http.StatusConflict, codeConflict, "A rebuild is already running", nil)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Rebuild interrupted", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, codeInternal, "Rebuild failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, report, start, -1)
}

// AddToList puts a recommended item on a list. Category and image default
// to the user's record for the item, and the category to "Other" when no
// record exists.
func (h *Handler) AddToList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AddToListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.ItemName = strings.TrimSpace(req.ItemName)

	list, err := h.store.GetList(r.Context(), req.ListID)
	if err != nil {
		respondStoreError(w, "list", err)
		return
	}
	if !list.IsMember(req.UserID) {
		respondError(w, http.StatusForbidden, codeForbidden, "User is not a member of the list", nil)
		return
	}

	item := &models.ListItem{
		ListID:   list.ID,
		Name:     req.ItemName,
		Category: req.Category,
		ImageURL: req.ImageURL,
		Quantity: req.Quantity,
		AddedBy:  req.UserID,
	}

	if item.Category == "" || item.ImageURL == "" {
		rec, err := h.store.GetRecord(r.Context(), req.UserID, req.ItemName)
		switch {
		case err == nil:
			if item.Category == "" {
				item.Category = rec.Category
			}
			if item.ImageURL == "" {
				item.ImageURL = rec.ImageURL
			}
		case !errors.Is(err, models.ErrNotFound):
			respondError(w, http.StatusInternalServerError, codeDatabase, "Failed to load recommendation", err)
			return
		}
	}
	if item.Category == "" {
		item.Category = defaultCategory
	}

	if err := h.store.AddListItem(r.Context(), item); err != nil {
		respondStoreError(w, "list item", err)
		return
	}
	respondSuccess(w, http.StatusCreated, item, start, -1)
}
