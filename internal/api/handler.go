// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"time"

	"github.com/tomtom215/pantry/internal/eventprocessor"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend"
)

// handlerTimeout bounds the work of a single request.
const handlerTimeout = 10 * time.Second

// Recommender is the part of the engine the HTTP layer uses.
type Recommender interface {
	Recommend(ctx context.Context, userID string, listIDs []string) []models.Recommendation
	FindSimilarUsers(ctx context.Context, userID string) ([]models.SimilarUser, error)
	GetCollaborativeRecommendations(ctx context.Context, userID string) ([]models.CollaborativeCandidate, error)
	BuildRecommendationsFromHistory(ctx context.Context) (*recommend.RebuildReport, error)
	LastRebuild() *recommend.RebuildReport
}

// Store holds lists and recommendation records.
type Store interface {
	Ping(ctx context.Context) error
	GetRecord(ctx context.Context, userID, itemName string) (*models.RecommendationRecord, error)

	CreateList(ctx context.Context, list *models.List) error
	GetList(ctx context.Context, listID string) (*models.List, error)
	SetListStatus(ctx context.Context, listID string, completed, archived bool) error

	AddListItem(ctx context.Context, item *models.ListItem) error
	ListItems(ctx context.Context, listID string) ([]models.ListItem, error)
	MarkPurchased(ctx context.Context, listID, itemID, userID string, at time.Time) (*models.ListItem, error)
}

// PurchaseIngester accepts purchase events.
type PurchaseIngester interface {
	Ingest(ctx context.Context, event *models.PurchaseEvent, source string) (eventprocessor.IngestResult, error)
}

// Handler serves the HTTP API.
type Handler struct {
	engine   Recommender
	store    Store
	ingester PurchaseIngester

	version   string
	startTime time.Time
	now       func() time.Time

	// Optional health checks, nil when the component is disabled
	natsStatus func() bool
	walPending func() int64
}

// NewHandler creates a handler.
func NewHandler(engine Recommender, store Store, ingester PurchaseIngester, version string) *Handler {
	return &Handler{
		engine:    engine,
		store:     store,
		ingester:  ingester,
		version:   version,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// SetNATSStatus reports message bus connectivity in /health.
func (h *Handler) SetNATSStatus(fn func() bool) { h.natsStatus = fn }

// SetWALPending reports the number of unconfirmed WAL entries in /health.
func (h *Handler) SetWALPending(fn func() int64) { h.walPending = fn }

// SetClock replaces time.Now for purchase timestamps.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }
