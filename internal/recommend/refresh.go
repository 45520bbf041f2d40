// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pantry/internal/metrics"
)

var (
	// ErrQueueFull is returned by Submit when the refresh queue is at capacity.
	ErrQueueFull = errors.New("refresh queue full")

	// ErrQueueClosed is returned by Submit after the queue has stopped.
	ErrQueueClosed = errors.New("refresh queue closed")
)

// ItemSimilarityUpdater is implemented by *Engine.
type ItemSimilarityUpdater interface {
	UpdateItemSimilarities(ctx context.Context, userID string) error
}

// RefreshQueue runs item-similarity refreshes on a bounded set of worker
// goroutines. Submitting a user that is already waiting is a no-op.
//
// RefreshQueue implements suture.Service; tasks are accepted only while
// Serve is running.
type RefreshQueue struct {
	updater ItemSimilarityUpdater
	config  RefreshConfig
	logger  zerolog.Logger

	tasks  chan string
	errors chan error

	pendingMu sync.Mutex
	pending   map[string]struct{}

	running atomic.Bool

	submitted atomic.Int64
	dropped   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// RefreshStats contains refresh queue counters.
type RefreshStats struct {
	Submitted int64 `json:"submitted"`
	Dropped   int64 `json:"dropped"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Pending   int   `json:"pending"`
}

// NewRefreshQueue creates a refresh queue for updater.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshQueue(updater ItemSimilarityUpdater, cfg RefreshConfig, logger zerolog.Logger) *RefreshQueue {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}

	return &RefreshQueue{
		updater: updater,
		config:  cfg,
		logger:  logger.With().Str("component", "refresh-queue").Logger(),
		tasks:   make(chan string, cfg.QueueSize),
		errors:  make(chan error, cfg.QueueSize),
		pending: make(map[string]struct{}),
	}
}

// Submit schedules a refresh for userID without blocking.
func (q *RefreshQueue) Submit(userID string) error {
	if !q.running.Load() {
		return ErrQueueClosed
	}

	q.pendingMu.Lock()
	if _, ok := q.pending[userID]; ok {
		q.pendingMu.Unlock()
		return nil
	}
	q.pending[userID] = struct{}{}
	q.pendingMu.Unlock()

	select {
	case q.tasks <- userID:
		q.submitted.Add(1)
		metrics.RecordRefreshTask("submitted")
		metrics.RefreshQueueDepth.Set(float64(len(q.tasks)))
		return nil
	default:
		q.forget(userID)
		q.dropped.Add(1)
		metrics.RecordRefreshTask(metrics.OutcomeDropped)
		return ErrQueueFull
	}
}

// Serve implements suture.Service. It runs the workers and logs task
// errors until ctx is cancelled.
func (q *RefreshQueue) Serve(ctx context.Context) error {
	q.running.Store(true)
	defer q.running.Store(false)

	q.logger.Info().
		Int("workers", q.config.Workers).
		Int("queue_size", q.config.QueueSize).
		Msg("refresh queue starting")

	var wg sync.WaitGroup
	for i := 0; i < q.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.work(ctx)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			q.logger.Info().Msg("refresh queue stopped")
			return ctx.Err()
		case err := <-q.errors:
			q.logger.Error().Err(err).Msg("similarity refresh failed")
		}
	}
}

func (q *RefreshQueue) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case userID := <-q.tasks:
			metrics.RefreshQueueDepth.Set(float64(len(q.tasks)))
			q.run(ctx, userID)
		}
	}
}

func (q *RefreshQueue) run(ctx context.Context, userID string) {
	// Removed before running so purchases made during the refresh
	// schedule another one.
	q.forget(userID)

	taskCtx, cancel := context.WithTimeout(ctx, q.config.TaskTimeout)
	defer cancel()

	if err := q.updater.UpdateItemSimilarities(taskCtx, userID); err != nil {
		q.failed.Add(1)
		metrics.RecordRefreshTask(metrics.OutcomeFailure)
		select {
		case q.errors <- fmt.Errorf("refresh %s: %w", userID, err):
		default:
			q.logger.Error().Err(err).Str("user_id", userID).Msg("similarity refresh failed")
		}
		return
	}

	q.completed.Add(1)
	metrics.RecordRefreshTask(metrics.OutcomeSuccess)
}

func (q *RefreshQueue) forget(userID string) {
	q.pendingMu.Lock()
	delete(q.pending, userID)
	q.pendingMu.Unlock()
}

// Stats returns the queue counters.
func (q *RefreshQueue) Stats() RefreshStats {
	q.pendingMu.Lock()
	pending := len(q.pending)
	q.pendingMu.Unlock()

	return RefreshStats{
		Submitted: q.submitted.Load(),
		Dropped:   q.dropped.Load(),
		Completed: q.completed.Load(),
		Failed:    q.failed.Load(),
		Pending:   pending,
	}
}

// String returns the service name for logging.
func (q *RefreshQueue) String() string {
	return "refresh-queue"
}
