// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/wal"
)

// Applier folds a purchase into the user's recommendation record.
type Applier interface {
	ApplyPurchase(ctx context.Context, item models.PurchasedItem, userID string) error
}

// EventLog persists purchase events. inserted is false when the event id
// was already recorded.
type EventLog interface {
	InsertPurchaseEvent(ctx context.Context, event *models.PurchaseEvent) (inserted bool, err error)
}

// Journal is the write-ahead log the ingester writes before applying.
// WriteClaimed must keep the new entry away from replay until ReleaseEntry.
type Journal interface {
	WriteClaimed(ctx context.Context, event interface{}) (string, error)
	ReleaseEntry(entryID string)
	UpdateAttempt(ctx context.Context, entryID, lastError string) error
	Confirm(ctx context.Context, entryID string) error
}

// Deduplicator remembers recently seen event ids.
type Deduplicator interface {
	IsDuplicate(key string) bool
	Remove(key string) bool
}

// IngestResult says what happened to an accepted event.
type IngestResult int

const (
	// IngestApplied means the event was logged and applied.
	IngestApplied IngestResult = iota
	// IngestDuplicate means the event id was seen before and skipped.
	IngestDuplicate
	// IngestJournaled means applying failed and the WAL retry loop owns it.
	IngestJournaled
)

func (r IngestResult) String() string {
	switch r {
	case IngestApplied:
		return "applied"
	case IngestDuplicate:
		return "duplicate"
	case IngestJournaled:
		return "journaled"
	default:
		return "unknown"
	}
}

// Ingester is the single path purchases take into the engine, whether they
// arrive over HTTP, NATS or WAL replay:
//
//	normalize -> dedupe -> journal -> log event -> apply -> confirm
//
// With a journal, a failed apply is left to the WAL retry loop and the
// caller sees success. The event log also acts as a durable dedupe record
// in that mode. Without a journal, failures are returned so the transport
// can redeliver.
type Ingester struct {
	applier Applier
	events  EventLog
	journal Journal
	dedupe  Deduplicator
	breaker *gobreaker.CircuitBreaker[interface{}]
	log     *logging.EventLogger
	now     func() time.Time
}

// NewIngester creates an ingester. events may be nil when purchases are not
// logged (rebuild then has nothing to replay).
func NewIngester(applier Applier, events EventLog) (*Ingester, error) {
	if applier == nil {
		return nil, errors.New("ingester: applier cannot be nil")
	}
	return &Ingester{
		applier: applier,
		events:  events,
		log:     logging.NewEventLogger(),
		now:     time.Now,
	}, nil
}

// SetJournal enables write-ahead journaling.
func (i *Ingester) SetJournal(j Journal) { i.journal = j }

// SetDeduplicator enables event id deduplication.
func (i *Ingester) SetDeduplicator(d Deduplicator) { i.dedupe = d }

// SetCircuitBreaker guards store calls with cb.
func (i *Ingester) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) { i.breaker = cb }

// SetEventLogger replaces the event logger.
func (i *Ingester) SetEventLogger(l *logging.EventLogger) { i.log = l }

// SetClock replaces time.Now for defaulted event dates.
func (i *Ingester) SetClock(now func() time.Time) { i.now = now }

// Ingest accepts one purchase event. Errors wrapping ErrMalformedEvent are
// permanent.
func (i *Ingester) Ingest(ctx context.Context, event *models.PurchaseEvent, source string) (IngestResult, error) {
	start := time.Now()
	if err := NormalizeEvent(event, i.now()); err != nil {
		return 0, err
	}
	i.log.LogPurchaseReceived(ctx, event.EventID, event.UserID, event.ItemName, source)

	if i.dedupe != nil && i.dedupe.IsDuplicate(event.EventID) {
		i.log.LogDuplicate(ctx, event.EventID, "recently seen")
		return IngestDuplicate, nil
	}

	var entryID string
	if i.journal != nil {
		id, err := i.journal.WriteClaimed(ctx, event)
		if err != nil {
			i.forget(event.EventID)
			return 0, fmt.Errorf("journal purchase %s: %w", event.EventID, err)
		}
		entryID = id
		defer i.journal.ReleaseEntry(id)
	}

	inserted, err := i.logEvent(ctx, event)
	if err == nil && !inserted && entryID != "" {
		i.log.LogDuplicate(ctx, event.EventID, "already in event log")
		i.confirm(ctx, entryID)
		return IngestDuplicate, nil
	}
	if err == nil {
		err = i.apply(ctx, event)
	}

	if err != nil {
		i.log.LogPurchaseFailed(ctx, event.EventID, err)
		if entryID != "" {
			i.markAttempt(ctx, entryID, err)
			return IngestJournaled, nil
		}
		i.forget(event.EventID)
		return 0, err
	}

	if entryID != "" {
		i.confirm(ctx, entryID)
	}
	i.log.LogPurchaseApplied(ctx, event.EventID, time.Since(start))
	return IngestApplied, nil
}

// ReplayEntry implements wal.Replayer. An entry that no longer decodes is
// dropped rather than retried.
//
// An entry with no recorded attempt whose event is already in the event log
// was applied by the live path, which crashed or failed to confirm before
// the entry was closed. It is confirmed without applying again. Every failed
// apply records an attempt, so those entries are still applied.
func (i *Ingester) ReplayEntry(ctx context.Context, entry *wal.Entry) error {
	var event models.PurchaseEvent
	if err := entry.UnmarshalPayload(&event); err != nil {
		i.log.LogPoison(ctx, entry.ID, err, entry.Attempts)
		return nil
	}
	inserted, err := i.logEvent(ctx, &event)
	if err != nil {
		return err
	}
	if !inserted && entry.Attempts == 0 {
		i.log.LogDuplicate(ctx, event.EventID, "applied before replay")
		return nil
	}
	return i.apply(ctx, &event)
}

// Recover replays everything left pending in w, typically at startup.
func (i *Ingester) Recover(ctx context.Context, w *wal.BadgerWAL) (*wal.RecoveryResult, error) {
	result, err := w.RecoverPending(ctx, i)
	if result != nil {
		i.log.LogReplay(result.Recovered, result.Failed, result.Duration)
	}
	return result, err
}

func (i *Ingester) logEvent(ctx context.Context, event *models.PurchaseEvent) (bool, error) {
	if i.events == nil {
		return true, nil
	}
	var inserted bool
	err := i.guard(func() error {
		var err error
		inserted, err = i.events.InsertPurchaseEvent(ctx, event)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("log purchase event %s: %w", event.EventID, err)
	}
	return inserted, nil
}

func (i *Ingester) apply(ctx context.Context, event *models.PurchaseEvent) error {
	err := i.guard(func() error {
		return i.applier.ApplyPurchase(ctx, event.Item(), event.UserID)
	})
	if err != nil {
		return fmt.Errorf("apply purchase %s: %w", event.EventID, err)
	}
	return nil
}

func (i *Ingester) guard(fn func() error) error {
	if i.breaker == nil {
		return fn()
	}
	_, err := i.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// markAttempt starts the entry's retry backoff and tells replay that the
// event still needs applying.
func (i *Ingester) markAttempt(ctx context.Context, entryID string, cause error) {
	if err := i.journal.UpdateAttempt(ctx, entryID, cause.Error()); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Str("entry_id", entryID).Msg("failed to record WAL attempt")
	}
}

// confirm failures leave the entry pending; the retry loop replays it.
func (i *Ingester) confirm(ctx context.Context, entryID string) {
	if err := i.journal.Confirm(ctx, entryID); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Str("entry_id", entryID).Msg("failed to confirm WAL entry")
	}
}

func (i *Ingester) forget(eventID string) {
	if i.dedupe != nil {
		i.dedupe.Remove(eventID)
	}
}
