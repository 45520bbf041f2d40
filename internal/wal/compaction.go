// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package wal

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// Compactor removes confirmed entries and runs value-log GC on an interval.
// It implements suture.Service.
type Compactor struct {
	wal *BadgerWAL
}

// NewCompactor creates a compactor for w.
func NewCompactor(w *BadgerWAL) *Compactor {
	return &Compactor{wal: w}
}

// Serve runs until ctx is canceled.
func (c *Compactor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.wal.config.CompactInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := c.Compact(); err != nil {
				logging.Error().Err(err).Msg("WAL compaction failed")
			}
		}
	}
}

// Compact deletes confirmed entries and returns how many were removed.
func (c *Compactor) Compact() (int, error) {
	if err := c.wal.checkOpen(); err != nil {
		return 0, err
	}

	start := time.Now()
	var keys [][]byte
	err := c.wal.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixConfirmed)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan confirmed entries: %w", err)
	}

	wb := c.wal.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("delete confirmed entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush compaction batch: %w", err)
	}

	if err := c.wal.RunGC(); err != nil {
		logging.Warn().Err(err).Msg("WAL value log GC failed")
	}

	c.wal.mu.Lock()
	c.wal.lastCompaction = time.Now()
	c.wal.mu.Unlock()

	metrics.RecordWALOperation("compact", nil)
	if len(keys) > 0 {
		logging.Debug().
			Int("removed", len(keys)).
			Dur("took", time.Since(start)).
			Msg("WAL compaction complete")
	}
	return len(keys), nil
}

// String identifies the service in supervisor logs.
func (c *Compactor) String() string {
	return "wal-compactor"
}
