// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

// Package database provides DuckDB-backed persistence for Pantry.
//
// # Overview
//
// DB implements recommend.Store on top of DuckDB (github.com/duckdb/duckdb-go/v2)
// and adds the purchase log and shopping-list operations used by the HTTP API
// and the ingest pipeline.
//
// Files:
//   - database.go: connection lifecycle, pool configuration, checkpoints
//   - database_schema.go: table and index creation
//   - recommendations.go: recommendation records (the recommend.Store surface)
//   - purchases.go: append-only purchase log used by the batch rebuild
//   - lists.go: shopping lists, members and list items
//   - errors.go: close helpers and transaction-conflict retry
//
// # Storage Layout
//
// Each recommendation record is one row keyed by (user_id, item_name).
// Nested values (purchase history, seasonal counters, feature vector and
// similar items) are stored as JSON text encoded with github.com/goccy/go-json.
// Timestamps are stored in UTC.
//
// # Concurrency
//
// Writers of the same logical row are serialized with an in-process mutex.
// Transaction conflicts reported by DuckDB are retried up to three times
// with exponential backoff; every retry increments
// duckdb_transaction_retries_total.
//
// # Usage Example
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine := recommend.NewEngine(engineCfg, logger)
//	engine.SetStore(db)
package database
