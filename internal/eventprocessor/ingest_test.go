// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package eventprocessor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pantry/internal/cache"
	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/wal"
)

var errStoreDown = errors.New("store down")

type fakeApplier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeApplier) ApplyPurchase(_ context.Context, item models.PurchasedItem, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, userID+"/"+item.Name)
	return nil
}

func (f *fakeApplier) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeApplier) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeEventLog struct {
	mu     sync.Mutex
	events map[string]models.PurchaseEvent
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{events: make(map[string]models.PurchaseEvent)}
}

func (f *fakeEventLog) InsertPurchaseEvent(_ context.Context, event *models.PurchaseEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.EventID]; ok {
		return false, nil
	}
	f.events[event.EventID] = *event
	return true, nil
}

func (f *fakeEventLog) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func openTestWAL(t *testing.T) *wal.BadgerWAL {
	t.Helper()
	cfg := wal.DefaultConfig()
	cfg.InMemory = true
	cfg.Path = ""
	cfg.SyncWrites = false
	w, err := wal.Open(cfg)
	if err != nil {
		t.Fatalf("wal.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func newTestIngester(t *testing.T, applier Applier, events EventLog) *Ingester {
	t.Helper()
	in, err := NewIngester(applier, events)
	if err != nil {
		t.Fatalf("NewIngester() error = %v", err)
	}
	in.SetClock(func() time.Time { return time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC) })
	return in
}

func milk(id string) *models.PurchaseEvent {
	return &models.PurchaseEvent{EventID: id, UserID: "alice", ItemName: "Milk", Category: "Dairy"}
}

func TestNewIngester_NilApplier(t *testing.T) {
	if _, err := NewIngester(nil, nil); err == nil {
		t.Error("NewIngester(nil) should fail")
	}
}

func TestIngest_Applies(t *testing.T) {
	applier := &fakeApplier{}
	events := newFakeEventLog()
	in := newTestIngester(t, applier, events)

	event := &models.PurchaseEvent{UserID: " alice ", ItemName: "Milk"}
	result, err := in.Ingest(context.Background(), event, "http")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result != IngestApplied {
		t.Errorf("result = %v, want applied", result)
	}
	if event.EventID == "" {
		t.Error("EventID should be generated")
	}
	if event.Quantity != 1 || event.Date.IsZero() {
		t.Errorf("event not normalized: %+v", event)
	}
	if got := applier.Calls(); len(got) != 1 || got[0] != "alice/Milk" {
		t.Errorf("apply calls = %v, want [alice/Milk]", got)
	}
	if events.Len() != 1 {
		t.Errorf("logged events = %d, want 1", events.Len())
	}
}

func TestIngest_Malformed(t *testing.T) {
	applier := &fakeApplier{}
	in := newTestIngester(t, applier, nil)

	for _, event := range []*models.PurchaseEvent{
		nil,
		{ItemName: "Milk"},
		{UserID: "alice", ItemName: "   "},
	} {
		if _, err := in.Ingest(context.Background(), event, "nats"); !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("Ingest(%+v) error = %v, want ErrMalformedEvent", event, err)
		}
	}
	if len(applier.Calls()) != 0 {
		t.Error("malformed events should not be applied")
	}
}

func TestIngest_Deduplicates(t *testing.T) {
	applier := &fakeApplier{}
	in := newTestIngester(t, applier, nil)
	in.SetDeduplicator(cache.NewLRUCache("test", 10, time.Minute))

	for i := 0; i < 3; i++ {
		result, err := in.Ingest(context.Background(), milk("e1"), "nats")
		if err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
		want := IngestDuplicate
		if i == 0 {
			want = IngestApplied
		}
		if result != want {
			t.Errorf("delivery %d result = %v, want %v", i, result, want)
		}
	}
	if got := len(applier.Calls()); got != 1 {
		t.Errorf("apply calls = %d, want 1", got)
	}
}

func TestIngest_FailureWithoutJournal(t *testing.T) {
	applier := &fakeApplier{err: errStoreDown}
	in := newTestIngester(t, applier, nil)
	in.SetDeduplicator(cache.NewLRUCache("test", 10, time.Minute))

	if _, err := in.Ingest(context.Background(), milk("e1"), "nats"); !errors.Is(err, errStoreDown) {
		t.Fatalf("Ingest() error = %v, want errStoreDown", err)
	}

	// The failed id is forgotten so redelivery is applied.
	applier.setErr(nil)
	result, err := in.Ingest(context.Background(), milk("e1"), "nats")
	if err != nil || result != IngestApplied {
		t.Fatalf("redelivery = %v, %v; want applied", result, err)
	}
}

func TestIngest_JournaledFailureRecovers(t *testing.T) {
	applier := &fakeApplier{err: errStoreDown}
	events := newFakeEventLog()
	w := openTestWAL(t)
	in := newTestIngester(t, applier, events)
	in.SetJournal(w)

	result, err := in.Ingest(context.Background(), milk("e1"), "nats")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result != IngestJournaled {
		t.Errorf("result = %v, want journaled", result)
	}
	if pending := w.Stats().PendingCount; pending != 1 {
		t.Fatalf("pending = %d, want 1", pending)
	}
	entries, err := w.GetPending(context.Background())
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if entries[0].Attempts != 1 || entries[0].LastAttemptAt.IsZero() {
		t.Errorf("entry attempts = %d, last attempt %v; want 1 and set", entries[0].Attempts, entries[0].LastAttemptAt)
	}

	applier.setErr(nil)
	rec, err := in.Recover(context.Background(), w)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if rec.Recovered != 1 {
		t.Errorf("recovered = %d, want 1", rec.Recovered)
	}
	if got := applier.Calls(); len(got) != 1 || got[0] != "alice/Milk" {
		t.Errorf("apply calls = %v, want [alice/Milk]", got)
	}
	if pending := w.Stats().PendingCount; pending != 0 {
		t.Errorf("pending after recovery = %d, want 0", pending)
	}
	if events.Len() != 1 {
		t.Errorf("logged events = %d, want 1", events.Len())
	}
}

func TestIngest_EventLogDuplicate(t *testing.T) {
	applier := &fakeApplier{}
	events := newFakeEventLog()
	w := openTestWAL(t)
	in := newTestIngester(t, applier, events)
	in.SetJournal(w)

	if _, err := in.Ingest(context.Background(), milk("e1"), "nats"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	// No in-memory dedupe: the event log catches the redelivery.
	result, err := in.Ingest(context.Background(), milk("e1"), "nats")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result != IngestDuplicate {
		t.Errorf("result = %v, want duplicate", result)
	}
	if got := len(applier.Calls()); got != 1 {
		t.Errorf("apply calls = %d, want 1", got)
	}
	if pending := w.Stats().PendingCount; pending != 0 {
		t.Errorf("pending = %d, want 0", pending)
	}
}

// blockingApplier holds the first ApplyPurchase until release is closed.
type blockingApplier struct {
	fakeApplier
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingApplier) ApplyPurchase(ctx context.Context, item models.PurchasedItem, userID string) error {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.fakeApplier.ApplyPurchase(ctx, item, userID)
}

func TestIngest_RetryLoopDoesNotReplayInFlightEntry(t *testing.T) {
	applier := &blockingApplier{entered: make(chan struct{}), release: make(chan struct{})}
	events := newFakeEventLog()
	w := openTestWAL(t)
	in := newTestIngester(t, applier, events)
	in.SetJournal(w)

	done := make(chan error, 1)
	go func() {
		_, err := in.Ingest(context.Background(), milk("e1"), "http")
		done <- err
	}()
	<-applier.entered

	loop := wal.NewRetryLoop(w, in)
	if got := loop.RetryOnce(context.Background()); got != 0 {
		t.Errorf("RetryOnce() during live apply = %d, want 0", got)
	}

	close(applier.release)
	if err := <-done; err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	loop.RetryOnce(context.Background())

	if got := len(applier.Calls()); got != 1 {
		t.Errorf("apply calls = %d, want 1", got)
	}
	if pending := w.Stats().PendingCount; pending != 0 {
		t.Errorf("pending = %d, want 0", pending)
	}
}

func TestReplayEntry_AlreadyLoggedEvent(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		wantCalls int
	}{
		{"applied before crash", 0, 0},
		{"apply failed after logging", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applier := &fakeApplier{}
			events := newFakeEventLog()
			in := newTestIngester(t, applier, events)

			event := milk("e1")
			if _, err := events.InsertPurchaseEvent(context.Background(), event); err != nil {
				t.Fatalf("InsertPurchaseEvent() error = %v", err)
			}
			payload, err := json.Marshal(event)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			entry := &wal.Entry{ID: "entry-1", Payload: payload, Attempts: tt.attempts}
			if err := in.ReplayEntry(context.Background(), entry); err != nil {
				t.Fatalf("ReplayEntry() error = %v", err)
			}
			if got := len(applier.Calls()); got != tt.wantCalls {
				t.Errorf("apply calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestReplayEntry_UndecodablePayloadDropped(t *testing.T) {
	applier := &fakeApplier{}
	in := newTestIngester(t, applier, nil)

	entry := &wal.Entry{ID: "bad", Payload: []byte(`{"user_id":`)}
	if err := in.ReplayEntry(context.Background(), entry); err != nil {
		t.Errorf("ReplayEntry() error = %v, want nil", err)
	}
	if len(applier.Calls()) != 0 {
		t.Error("undecodable entry should not be applied")
	}
}

func TestIngester_SetEventLogger(t *testing.T) {
	var buf bytes.Buffer
	in := newTestIngester(t, &fakeApplier{err: errStoreDown}, nil)
	in.SetEventLogger(logging.NewEventLoggerWithLogger(logging.NewTestLogger(&buf)))

	if _, err := in.Ingest(context.Background(), milk("e-logged"), "http"); err == nil {
		t.Fatal("Ingest() should fail")
	}
	if out := buf.String(); !strings.Contains(out, "e-logged") || !strings.Contains(out, "Purchase failed") {
		t.Errorf("event log output = %q, want the failed purchase", out)
	}
}

func TestIngest_CircuitBreakerOpens(t *testing.T) {
	applier := &fakeApplier{err: errStoreDown}
	in := newTestIngester(t, applier, nil)

	cfg := DefaultCircuitBreakerConfig("test-ingest")
	cfg.FailureThreshold = 2
	in.SetCircuitBreaker(NewCircuitBreaker(cfg, zerolog.Nop()))

	for i := 0; i < 2; i++ {
		if _, err := in.Ingest(context.Background(), milk(""), "http"); !errors.Is(err, errStoreDown) {
			t.Fatalf("attempt %d error = %v, want errStoreDown", i, err)
		}
	}
	if _, err := in.Ingest(context.Background(), milk(""), "http"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
}

func TestIngestResult_String(t *testing.T) {
	tests := map[IngestResult]string{
		IngestApplied:   "applied",
		IngestDuplicate: "duplicate",
		IngestJournaled: "journaled",
		IngestResult(9): "unknown",
	}
	for r, want := range tests {
		if got := r.String(); got != want {
			t.Errorf("IngestResult(%d).String() = %q, want %q", r, got, want)
		}
	}
}
