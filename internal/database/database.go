// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/pantry/internal/config"
	"github.com/tomtom215/pantry/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
// It implements recommend.Store.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// Per-key write locks for concurrent UPSERTs on the same row
	rowLocks sync.Map
}

// New creates a new database connection and initializes the schema
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s",
		cfg.Path, numThreads, cfg.MaxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn: conn,
		cfg:  cfg,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection.
// It performs a CHECKPOINT before closing to flush the DuckDB WAL into the main file.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint forces a DuckDB WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// RecordCounts returns the number of recommendation records and purchase events
func (db *DB) RecordCounts(ctx context.Context) (records int64, events int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM recommendations").Scan(&records); err != nil {
		return 0, 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	if err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM purchase_events").Scan(&events); err != nil {
		return records, 0, fmt.Errorf("failed to count purchase events: %w", err)
	}
	return records, events, nil
}

// initialize creates tables and indexes, then checkpoints the schema
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.createIndexes(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}

	return nil
}

// configureConnectionPool sets connection pool parameters:
// NumCPU open connections, 2 idle, 1h lifetime, 5m idle time.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// ensureContext creates a context with 30-second timeout if none provided
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}

	return ctx, func() {}
}

// acquireRowLock serializes writers of one logical row
func (db *DB) acquireRowLock(key string) *sync.Mutex {
	muInterface, _ := db.rowLocks.LoadOrStore(key, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		mu = &sync.Mutex{}
		db.rowLocks.Store(key, mu)
	}
	mu.Lock()
	return mu
}

// releaseRowLock releases the per-row mutex lock
func (db *DB) releaseRowLock(mu *sync.Mutex) {
	mu.Unlock()
}
