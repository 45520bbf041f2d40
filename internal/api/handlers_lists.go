// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
)

// CreateListRequest creates a shopping list shared by its members.
type CreateListRequest struct {
	ID      string   `json:"id,omitempty" validate:"omitempty,max=128"`
	Name    string   `json:"name" validate:"required,notblank,max=200"`
	Members []string `json:"members" validate:"required,min=1,max=50,dive,notblank,max=128"`
}

// UpdateListRequest changes the status flags of a list. Absent flags keep
// their value.
type UpdateListRequest struct {
	Completed *bool `json:"completed,omitempty"`
	Archived  *bool `json:"archived,omitempty"`
}

// AddListItemRequest adds an unpurchased item to a list.
type AddListItemRequest struct {
	UserID   string  `json:"user_id" validate:"required,notblank,max=128"`
	Name     string  `json:"name" validate:"required,itemname"`
	Category string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Quantity float64 `json:"quantity,omitempty" validate:"gte=0,lte=10000"`
	Price    float64 `json:"price,omitempty" validate:"gte=0"`
	ImageURL string  `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
}

// PurchaseListItemRequest names the member checking an item off.
type PurchaseListItemRequest struct {
	UserID string `json:"user_id" validate:"required,notblank,max=128"`
}

// ListDetail is a list with its items.
type ListDetail struct {
	*models.List
	Items []models.ListItem `json:"items"`
}

// CreateList handles POST /api/v1/lists.
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	members := make([]string, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, strings.TrimSpace(m))
	}
	list := &models.List{
		ID:      strings.TrimSpace(req.ID),
		Name:    strings.TrimSpace(req.Name),
		Members: members,
	}
	if err := h.store.CreateList(r.Context(), list); err != nil {
		respondStoreError(w, "list", err)
		return
	}
	respondSuccess(w, http.StatusCreated, list, start, -1)
}

// GetList handles GET /api/v1/lists/{id}.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	list, err := h.store.GetList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, "list", err)
		return
	}
	items, err := h.store.ListItems(r.Context(), list.ID)
	if err != nil {
		respondStoreError(w, "list items", err)
		return
	}
	respondSuccess(w, http.StatusOK, ListDetail{List: list, Items: items}, start, -1)
}

// UpdateList handles PATCH /api/v1/lists/{id}.
func (h *Handler) UpdateList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req UpdateListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, err := h.store.GetList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, "list", err)
		return
	}
	if req.Completed != nil {
		list.Completed = *req.Completed
	}
	if req.Archived != nil {
		list.Archived = *req.Archived
	}

	if err := h.store.SetListStatus(r.Context(), list.ID, list.Completed, list.Archived); err != nil {
		respondStoreError(w, "list", err)
		return
	}
	respondSuccess(w, http.StatusOK, list, start, -1)
}

// AddListItem handles POST /api/v1/lists/{id}/items.
func (h *Handler) AddListItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AddListItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, ok := h.memberList(w, r, req.UserID)
	if !ok {
		return
	}

	item := &models.ListItem{
		ListID:   list.ID,
		Name:     strings.TrimSpace(req.Name),
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
		ImageURL: req.ImageURL,
		AddedBy:  req.UserID,
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

// PurchaseListItem handles POST /api/v1/lists/{id}/items/{itemId}/purchase.
//
// The item is checked off and the purchase is ingested under an event id
// derived from the list item, so a redelivered hook never counts twice.
// Checking off an item twice answers 409. Once the item is checked off the
// hook succeeds even if ingest fails; the result is then "not_recorded".
func (h *Handler) PurchaseListItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PurchaseListItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, ok := h.memberList(w, r, req.UserID)
	if !ok {
		return
	}

	at := h.now().UTC()
	item, err := h.store.MarkPurchased(r.Context(), list.ID, chi.URLParam(r, "itemId"), req.UserID, at)
	if errors.Is(err, models.ErrAlreadyPurchased) {
		respondError(w, http.StatusConflict, codeConflict, "Item already purchased", nil)
		return
	}
	if err != nil {
		respondStoreError(w, "list item", err)
		return
	}

	event := &models.PurchaseEvent{
		EventID:  listItemEventID(list.ID, item.ID),
		UserID:   req.UserID,
		ItemName: item.Name,
		Category: item.Category,
		Date:     at,
		Quantity: item.Quantity,
		Price:    item.Price,
		ImageURL: item.ImageURL,
		ListID:   list.ID,
	}
	outcome := resultNotRecorded
	result, err := h.ingester.Ingest(r.Context(), event, sourceHTTP)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).
			Str("list_id", sanitizeLogValue(list.ID)).
			Str("item_id", sanitizeLogValue(item.ID)).
			Str("event_id", event.EventID).
			Msg("Item checked off but purchase was not recorded")
	} else {
		outcome = result.String()
	}

	respondSuccess(w, http.StatusOK, PurchaseResponse{
		EventID: event.EventID,
		Result:  outcome,
		Item:    item,
	}, start, -1)
}

// memberList loads the {id} list and checks that userID belongs to it.
func (h *Handler) memberList(w http.ResponseWriter, r *http.Request, userID string) (*models.List, bool) {
	list, err := h.store.GetList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, "list", err)
		return nil, false
	}
	if !list.IsMember(userID) {
		respondError(w, http.StatusForbidden, codeForbidden, "User is not a member of the list", nil)
		return nil, false
	}
	return list, true
}

// listItemEventID is stable for a list item.
func listItemEventID(listID, itemID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("pantry:list-item:"+listID+"/"+itemID)).String()
}
