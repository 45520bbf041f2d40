// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package wal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// Replayer applies a journaled entry. Implementations decode
// Entry.Payload into the event type they journaled.
type Replayer interface {
	ReplayEntry(ctx context.Context, entry *Entry) error
}

// ReplayerFunc adapts a function to Replayer.
type ReplayerFunc func(ctx context.Context, entry *Entry) error

// ReplayEntry implements Replayer.
func (f ReplayerFunc) ReplayEntry(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// RecoveryResult summarizes one pass over the pending entries.
type RecoveryResult struct {
	TotalPending int
	Recovered    int
	Failed       int
	Expired      int
	Skipped      int
	Errors       []error
	Duration     time.Duration
}

// outcome of replaying a single entry
type replayOutcome int

const (
	replayRecovered replayOutcome = iota
	replayFailed
	replayExpired
	replayDropped
	replaySkipped
)

// RecoverPending replays every pending entry once, ignoring backoff. It is
// called at startup before the ingest path accepts new purchases and is
// safe to call repeatedly.
func (w *BadgerWAL) RecoverPending(ctx context.Context, replayer Replayer) (*RecoveryResult, error) {
	if replayer == nil {
		return nil, errors.New("wal: replayer cannot be nil")
	}

	start := time.Now()
	result := &RecoveryResult{}

	entries, err := w.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pending entries: %w", err)
	}
	result.TotalPending = len(entries)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			result.Duration = time.Since(start)
			return result, err
		}

		switch w.replay(ctx, entry, replayer, result) {
		case replayRecovered:
			result.Recovered++
		case replayFailed, replayDropped:
			result.Failed++
		case replayExpired:
			result.Expired++
		case replaySkipped:
			result.Skipped++
		}
	}

	result.Duration = time.Since(start)
	if result.TotalPending > 0 {
		logging.Info().
			Int("pending", result.TotalPending).
			Int("recovered", result.Recovered).
			Int("failed", result.Failed).
			Int("expired", result.Expired).
			Int("skipped", result.Skipped).
			Dur("duration", result.Duration).
			Msg("WAL recovery complete")
	}
	return result, nil
}

// replay handles one entry: expiry and retry limits first, then the replayer.
// A nil result discards error details (used by the retry loop).
func (w *BadgerWAL) replay(ctx context.Context, entry *Entry, replayer Replayer, result *RecoveryResult) replayOutcome {
	if !w.TryClaimEntry(entry.ID) {
		return replaySkipped
	}
	defer w.ReleaseEntry(entry.ID)

	record := func(err error) {
		if result != nil && err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if w.config.EntryTTL > 0 && time.Since(entry.CreatedAt) > w.config.EntryTTL {
		logging.Info().Str("entry_id", entry.ID).Msg("WAL entry expired, removing")
		if err := w.DeleteEntry(ctx, entry.ID); err != nil && !errors.Is(err, ErrEntryNotFound) {
			record(fmt.Errorf("delete expired entry %s: %w", entry.ID, err))
		}
		metrics.RecordWALOperation("expire", nil)
		return replayExpired
	}

	if entry.Attempts >= w.config.MaxRetries {
		logging.Warn().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL entry exceeded max retries, removing")
		if err := w.DeleteEntry(ctx, entry.ID); err != nil && !errors.Is(err, ErrEntryNotFound) {
			record(fmt.Errorf("delete max-retried entry %s: %w", entry.ID, err))
		}
		metrics.RecordWALOperation("drop", nil)
		return replayDropped
	}

	if err := replayer.ReplayEntry(ctx, entry); err != nil {
		metrics.RecordWALOperation("replay", err)
		logging.Warn().Err(err).Str("entry_id", entry.ID).Int("attempt", entry.Attempts+1).Msg("WAL replay failed")
		if updateErr := w.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil && !errors.Is(updateErr, ErrEntryNotFound) {
			record(fmt.Errorf("update attempt for %s: %w", entry.ID, updateErr))
		}
		record(fmt.Errorf("replay %s: %w", entry.ID, err))
		return replayFailed
	}
	metrics.RecordWALOperation("replay", nil)

	if err := w.Confirm(ctx, entry.ID); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			// confirmed by a concurrent pass
			return replayRecovered
		}
		record(fmt.Errorf("confirm entry %s: %w", entry.ID, err))
		return replayFailed
	}
	return replayRecovered
}
