// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package wal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

var (
	ErrWALClosed     = errors.New("wal: closed")
	ErrNilEvent      = errors.New("wal: nil event")
	ErrEmptyEntryID  = errors.New("wal: empty entry id")
	ErrEntryNotFound = errors.New("wal: entry not found")
)

const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

// Entry is one journaled purchase and its replay bookkeeping.
type Entry struct {
	ID            string          `json:"id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	Confirmed     bool            `json:"confirmed"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
}

// UnmarshalPayload decodes the journaled event into v.
func (e *Entry) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Stats is a snapshot of WAL counters.
type Stats struct {
	PendingCount   int64     `json:"pending_count"`
	ConfirmedCount int64     `json:"confirmed_count"`
	TotalWrites    int64     `json:"total_writes"`
	TotalConfirms  int64     `json:"total_confirms"`
	TotalRetries   int64     `json:"total_retries"`
	LastCompaction time.Time `json:"last_compaction"`
}

// BadgerWAL journals purchases in BadgerDB so that a purchase accepted by
// the ingest path survives a crash between acceptance and the store write.
// Flow: Write, apply to the engine, Confirm. Unconfirmed entries are
// replayed by RecoverPending at startup and by the RetryLoop afterwards.
type BadgerWAL struct {
	db     *badger.DB
	config Config

	totalWrites   atomic.Int64
	totalConfirms atomic.Int64
	totalRetries  atomic.Int64

	mu             sync.RWMutex
	closed         bool
	lastCompaction time.Time

	// processing holds entry IDs claimed by an in-flight replay.
	processing sync.Map
}

// Open opens (or creates) the journal.
func Open(cfg Config) (*BadgerWAL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid WAL config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithSyncWrites(cfg.SyncWrites).
		WithMemTableSize(cfg.MemTableSize).
		WithValueLogFileSize(cfg.ValueLogFileSize).
		WithNumCompactors(cfg.NumCompactors).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if cfg.Compression {
		opts = opts.WithCompression(options.Snappy)
	} else {
		opts = opts.WithCompression(options.None)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	w := &BadgerWAL{
		db:             db,
		config:         cfg,
		lastCompaction: time.Now(),
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("WAL opened")
	return w, nil
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWALClosed
	}
	return nil
}

// Write journals event and returns the entry ID used to confirm it.
func (w *BadgerWAL) Write(ctx context.Context, event interface{}) (string, error) {
	return w.write(ctx, event, false)
}

// WriteClaimed journals event like Write but holds a claim on the new entry
// from before it becomes visible, so no replay can pick it up while the
// writer is still applying it. The caller must call ReleaseEntry.
func (w *BadgerWAL) WriteClaimed(ctx context.Context, event interface{}) (string, error) {
	return w.write(ctx, event, true)
}

func (w *BadgerWAL) write(_ context.Context, event interface{}, claim bool) (entryID string, err error) {
	defer func() { metrics.RecordWALOperation("write", err) }()

	if err := w.checkOpen(); err != nil {
		return "", err
	}
	if event == nil {
		return "", ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	entry := &Entry{
		ID:        uuid.New().String(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}
	if claim {
		w.processing.Store(entry.ID, entry.CreatedAt)
	}

	err = w.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixPending+entry.ID), data)
		if w.config.EntryTTL > 0 {
			e = e.WithTTL(w.config.EntryTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		if claim {
			w.processing.Delete(entry.ID)
		}
		return "", fmt.Errorf("write to BadgerDB: %w", err)
	}

	w.totalWrites.Add(1)
	metrics.WALPendingEntries.Inc()
	return entry.ID, nil
}

// Confirm moves an entry from pending to confirmed. Confirmed entries are
// removed by the next compaction.
func (w *BadgerWAL) Confirm(_ context.Context, entryID string) (err error) {
	defer func() { metrics.RecordWALOperation("confirm", err) }()

	if err := w.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	err = w.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, prefixPending+entryID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		entry.Confirmed = true
		entry.ConfirmedAt = &now

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal confirmed entry: %w", err)
		}
		if err := txn.Set([]byte(prefixConfirmed+entryID), data); err != nil {
			return fmt.Errorf("set confirmed entry: %w", err)
		}
		return txn.Delete([]byte(prefixPending + entryID))
	})
	if err != nil {
		return err
	}

	w.totalConfirms.Add(1)
	metrics.WALPendingEntries.Dec()
	return nil
}

// GetPending returns every unconfirmed entry, oldest first.
func (w *BadgerWAL) GetPending(_ context.Context) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := w.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefixPending, func(e *Entry) {
			entries = append(entries, e)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read pending entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// UpdateAttempt records a failed replay.
func (w *BadgerWAL) UpdateAttempt(_ context.Context, entryID, lastError string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	err := w.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, prefixPending+entryID)
		if err != nil {
			return err
		}
		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastError

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		e := badger.NewEntry([]byte(prefixPending+entryID), data)
		if w.config.EntryTTL > 0 {
			remaining := w.config.EntryTTL - time.Since(entry.CreatedAt)
			if remaining < time.Second {
				remaining = time.Second
			}
			e = e.WithTTL(remaining)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return err
	}

	w.totalRetries.Add(1)
	return nil
}

// DeleteEntry removes a pending entry that will never be replayed.
func (w *BadgerWAL) DeleteEntry(_ context.Context, entryID string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	err := w.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(prefixPending + entryID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		return txn.Delete([]byte(prefixPending + entryID))
	})
	if err != nil {
		return err
	}
	metrics.WALPendingEntries.Dec()
	return nil
}

// TryClaimEntry reserves entryID for one replay. The caller must call
// ReleaseEntry when the claim returns true.
func (w *BadgerWAL) TryClaimEntry(entryID string) bool {
	_, loaded := w.processing.LoadOrStore(entryID, time.Now())
	return !loaded
}

// ReleaseEntry drops a claim taken with TryClaimEntry.
func (w *BadgerWAL) ReleaseEntry(entryID string) {
	w.processing.Delete(entryID)
}

// Stats counts pending and confirmed entries and returns the counters.
func (w *BadgerWAL) Stats() Stats {
	stats := Stats{
		TotalWrites:   w.totalWrites.Load(),
		TotalConfirms: w.totalConfirms.Load(),
		TotalRetries:  w.totalRetries.Load(),
	}

	w.mu.RLock()
	stats.LastCompaction = w.lastCompaction
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return stats
	}

	_ = w.db.View(func(txn *badger.Txn) error {
		stats.PendingCount = countPrefix(txn, prefixPending)
		stats.ConfirmedCount = countPrefix(txn, prefixConfirmed)
		return nil
	})
	metrics.WALPendingEntries.Set(float64(stats.PendingCount))
	return stats
}

// Config returns the WAL configuration.
func (w *BadgerWAL) Config() Config {
	return w.config
}

// RunGC reclaims value-log space. In-memory journals have no value log.
func (w *BadgerWAL) RunGC() error {
	if w.config.InMemory {
		return nil
	}
	for {
		err := w.db.RunValueLogGC(w.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("value log GC: %w", err)
		}
	}
}

// Close shuts the journal down, giving up after CloseTimeout.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- w.db.Close() }()

	timeout := w.config.CloseTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("WAL closed")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("close BadgerDB: timed out after %s", timeout)
	}
}

func getEntry(txn *badger.Txn, key string) (*Entry, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}

func iteratePrefix(txn *badger.Txn, prefix string, fn func(*Entry)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var entry Entry
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			logging.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable WAL entry")
			continue
		}
		fn(&entry)
	}
	return nil
}

func countPrefix(txn *badger.Txn, prefix string) int64 {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var n int64
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}
