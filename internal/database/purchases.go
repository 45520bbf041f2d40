// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pantry/internal/database/query"
	"github.com/tomtom215/pantry/internal/models"
)

const purchaseColumns = `event_id, user_id, item_name, category, purchased_at,
	quantity, price, image_url, list_id`

// InsertPurchaseEvent appends an event to the purchase log. An event whose
// EventID is already stored is ignored and reported with inserted=false.
// An empty EventID is replaced with a new UUID.
func (db *DB) InsertPurchaseEvent(ctx context.Context, event *models.PurchaseEvent) (inserted bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("insert_purchase_event", "purchase_events", start, err) }(time.Now())

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Date.IsZero() {
		event.Date = time.Now()
	}

	err = withConflictRetry(ctx, "insert_purchase_event", func(ctx context.Context) error {
		result, err := db.conn.ExecContext(ctx, `INSERT INTO purchase_events (`+purchaseColumns+`, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (event_id) DO NOTHING`,
			event.EventID, event.UserID, event.ItemName, event.Category, event.Date.UTC(),
			event.Quantity, event.Price, event.ImageURL, event.ListID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert purchase event %s: %w", event.EventID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// ListPurchaseEvents returns the full purchase log ordered by user, item and date
func (db *DB) ListPurchaseEvents(ctx context.Context) ([]models.PurchaseEvent, error) {
	return db.queryPurchaseEvents(ctx, query.NewWhereBuilder())
}

// ListUserPurchaseEvents returns one user's purchases, optionally bounded in time
func (db *DB) ListUserPurchaseEvents(ctx context.Context, userID string, since, until *time.Time) ([]models.PurchaseEvent, error) {
	wb := query.NewWhereBuilder().
		AddEqual("user_id", userID).
		AddTimeRange("purchased_at", since, until)
	return db.queryPurchaseEvents(ctx, wb)
}

func (db *DB) queryPurchaseEvents(ctx context.Context, wb *query.WhereBuilder) (events []models.PurchaseEvent, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("list_purchase_events", "purchase_events", start, err) }(time.Now())

	whereClause, args := wb.BuildWithPrefix()
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+purchaseColumns+" FROM purchase_events "+whereClause+
			" ORDER BY user_id, item_name, purchased_at, event_id",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase events: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	events = []models.PurchaseEvent{}
	for rows.Next() {
		var e models.PurchaseEvent
		if err := rows.Scan(&e.EventID, &e.UserID, &e.ItemName, &e.Category, &e.Date,
			&e.Quantity, &e.Price, &e.ImageURL, &e.ListID); err != nil {
			return nil, fmt.Errorf("failed to scan purchase event: %w", err)
		}
		e.Date = e.Date.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase events: %w", err)
	}
	return events, nil
}
