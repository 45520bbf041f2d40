// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package wal

import (
	"context"
	"math"
	"time"

	"github.com/tomtom215/pantry/internal/logging"
)

const maxRetryBackoff = 5 * time.Minute

// RetryLoop periodically replays pending entries whose backoff has elapsed.
// It implements suture.Service.
type RetryLoop struct {
	wal      *BadgerWAL
	replayer Replayer
	config   Config
}

// NewRetryLoop creates a retry loop over w.
func NewRetryLoop(w *BadgerWAL, replayer Replayer) *RetryLoop {
	return &RetryLoop{wal: w, replayer: replayer, config: w.Config()}
}

// Serve runs until ctx is canceled.
func (r *RetryLoop) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", r.config.RetryInterval).
		Int("max_retries", r.config.MaxRetries).
		Msg("WAL retry loop started")

	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("WAL retry loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.RetryOnce(ctx)
		}
	}
}

// RetryOnce makes one pass over the pending entries and returns how many
// were replayed successfully.
func (r *RetryLoop) RetryOnce(ctx context.Context) int {
	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("WAL retry: failed to read pending entries")
		return 0
	}

	var recovered, failed, dropped int
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !r.readyForRetry(entry, time.Now()) {
			continue
		}
		switch r.wal.replay(ctx, entry, r.replayer, nil) {
		case replayRecovered:
			recovered++
		case replayFailed:
			failed++
		case replayExpired, replayDropped:
			dropped++
		}
	}

	if recovered+failed+dropped > 0 {
		logging.Info().
			Int("recovered", recovered).
			Int("failed", failed).
			Int("dropped", dropped).
			Msg("WAL retry pass complete")
	}
	return recovered
}

func (r *RetryLoop) readyForRetry(entry *Entry, now time.Time) bool {
	if entry.LastAttemptAt.IsZero() {
		return true
	}
	return now.Sub(entry.LastAttemptAt) >= backoff(r.config.RetryBackoff, entry.Attempts)
}

// backoff returns base * 2^attempts capped at five minutes.
func backoff(base time.Duration, attempts int) time.Duration {
	if attempts > 50 {
		return maxRetryBackoff
	}
	d := time.Duration(float64(base) * math.Pow(2, float64(attempts)))
	if d < 0 || d > maxRetryBackoff {
		return maxRetryBackoff
	}
	return d
}

// String identifies the service in supervisor logs.
func (r *RetryLoop) String() string {
	return "wal-retry"
}
