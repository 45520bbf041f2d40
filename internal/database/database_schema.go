// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
database_schema.go - Database Schema Management

Tables:
  - recommendations: one row per (user_id, item_name) with the derived
    purchase statistics. History, seasonal counters, the feature vector and
    similar items are JSON-encoded VARCHAR columns.
  - purchase_events: append-only purchase log keyed by event_id; the input
    of the batch rebuild.
  - lists, list_members, list_items: shopping lists used to exclude items
    already on a list and to record purchases when an item is checked off.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates secondary indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS recommendations (
		user_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		frequency INTEGER NOT NULL,
		confidence DOUBLE NOT NULL,
		last_purchased TIMESTAMP,
		purchase_history TEXT NOT NULL DEFAULT '[]',
		seasonal_factors TEXT NOT NULL DEFAULT '{}',
		feature_vector TEXT NOT NULL DEFAULT '[]',
		similar_items TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, item_name)
	)`,

	`CREATE TABLE IF NOT EXISTS purchase_events (
		event_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		purchased_at TIMESTAMP NOT NULL,
		quantity DOUBLE NOT NULL DEFAULT 1,
		price DOUBLE NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT '',
		list_id TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT false,
		archived BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS list_members (
		list_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (list_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS list_items (
		id TEXT PRIMARY KEY,
		list_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		quantity DOUBLE NOT NULL DEFAULT 1,
		image_url TEXT NOT NULL DEFAULT '',
		price DOUBLE NOT NULL DEFAULT 0,
		added_by TEXT NOT NULL DEFAULT '',
		purchased BOOLEAN NOT NULL DEFAULT false,
		purchased_by TEXT NOT NULL DEFAULT '',
		purchased_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
}

// Indexes stay off the columns touched by ON CONFLICT updates; DuckDB
// rejects updates to indexed columns inside an upsert.
var indexQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_purchase_events_user_item ON purchase_events (user_id, item_name)`,
	`CREATE INDEX IF NOT EXISTS idx_list_members_user ON list_members (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_list_items_list ON list_items (list_id)`,
}
