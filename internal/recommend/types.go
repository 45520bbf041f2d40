// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

var (
	// ErrRecordNotFound is returned by Store.GetRecord when no record exists
	// for the (user, item) pair.
	ErrRecordNotFound = models.ErrNotFound

	// ErrStoreNotSet is returned when an operation runs before SetStore.
	ErrStoreNotSet = errors.New("recommend: store not set")

	// ErrInvalidPurchase is returned when a purchase lacks a user or item name.
	ErrInvalidPurchase = errors.New("recommend: purchase requires user id and item name")

	// ErrRebuildInProgress is returned when a batch rebuild is already running.
	ErrRebuildInProgress = errors.New("recommend: rebuild already in progress")
)

// Store is the persistence the engine depends on. It is typically
// implemented by the database package.
type Store interface {
	// GetRecord returns the record for (userID, itemName) or an error
	// wrapping ErrRecordNotFound.
	GetRecord(ctx context.Context, userID, itemName string) (*models.RecommendationRecord, error)

	// ListRecords returns all of a user's records ordered by item name.
	ListRecords(ctx context.Context, userID string) ([]models.RecommendationRecord, error)

	// UpsertRecord inserts or replaces the record keyed by (UserID, ItemName).
	UpsertRecord(ctx context.Context, rec *models.RecommendationRecord) error

	// UpdateSimilarItems replaces only the similar-item list of one record.
	UpdateSimilarItems(ctx context.Context, userID, itemName string, similar []models.SimilarItem) error

	// UserItemSets returns, for every user other than excludeUserID who has
	// a record for at least one of itemNames, the names of all their records.
	UserItemSets(ctx context.Context, excludeUserID string, itemNames []string) (map[string][]string, error)

	// ListConfidentRecords returns a user's records with confidence >= minConfidence.
	ListConfidentRecords(ctx context.Context, userID string, minConfidence float64) ([]models.RecommendationRecord, error)

	// UnpurchasedItemNames returns the names of unpurchased items on the lists.
	UnpurchasedItemNames(ctx context.Context, listIDs []string) ([]string, error)

	// ActiveListIDs returns the lists the user belongs to that are neither
	// completed nor archived.
	ActiveListIDs(ctx context.Context, userID string) ([]string, error)

	// ListPurchaseEvents returns the full purchase log.
	ListPurchaseEvents(ctx context.Context) ([]models.PurchaseEvent, error)
}

// Refresher schedules asynchronous item-similarity refreshes.
// Submit must not block.
type Refresher interface {
	Submit(userID string) error
}

// RebuildReport summarizes a batch rebuild run.
type RebuildReport struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Events    int           `json:"events"`
	Users     int           `json:"users"`
	Groups    int           `json:"groups"`
	Skipped   int           `json:"skipped"`
	Upserted  int           `json:"upserted"`
	Failed    int           `json:"failed"`
}

// Stats contains engine counters since start.
type Stats struct {
	PurchasesRecorded int64 `json:"purchases_recorded"`
	PurchaseErrors    int64 `json:"purchase_errors"`
	RefreshScheduled  int64 `json:"refresh_scheduled"`
	Queries           int64 `json:"queries"`
	QueryErrors       int64 `json:"query_errors"`
	Rebuilds          int64 `json:"rebuilds"`
}
