// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package wal

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	ItemName string `json:"item_name"`
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InMemory = true
	cfg.Path = ""
	cfg.SyncWrites = false
	cfg.RetryInterval = 10 * time.Millisecond
	cfg.RetryBackoff = time.Millisecond
	cfg.MaxRetries = 3
	cfg.CompactInterval = 10 * time.Millisecond
	return cfg
}

func openTestWAL(t *testing.T) *BadgerWAL {
	t.Helper()
	w, err := Open(testConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return w
}

func TestWriteConfirm(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	id, err := w.Write(ctx, testEvent{EventID: "evt-1", UserID: "alice", ItemName: "Milk"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if id == "" {
		t.Fatal("Write() returned empty entry id")
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("GetPending() = %v, want entry %s", pending, id)
	}

	var got testEvent
	if err := pending[0].UnmarshalPayload(&got); err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if got.ItemName != "Milk" || got.UserID != "alice" {
		t.Errorf("payload = %+v, want alice/Milk", got)
	}

	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	stats := w.Stats()
	if stats.PendingCount != 0 || stats.ConfirmedCount != 1 {
		t.Errorf("Stats() pending/confirmed = %d/%d, want 0/1", stats.PendingCount, stats.ConfirmedCount)
	}
	if stats.TotalWrites != 1 || stats.TotalConfirms != 1 {
		t.Errorf("Stats() writes/confirms = %d/%d, want 1/1", stats.TotalWrites, stats.TotalConfirms)
	}

	if err := w.Confirm(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Confirm() error = %v, want ErrEntryNotFound", err)
	}
}

func TestWriteErrors(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	if _, err := w.Write(ctx, nil); !errors.Is(err, ErrNilEvent) {
		t.Errorf("Write(nil) error = %v, want ErrNilEvent", err)
	}
	if err := w.Confirm(ctx, ""); !errors.Is(err, ErrEmptyEntryID) {
		t.Errorf("Confirm(\"\") error = %v, want ErrEmptyEntryID", err)
	}
	if err := w.DeleteEntry(ctx, "missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("DeleteEntry(missing) error = %v, want ErrEntryNotFound", err)
	}
}

func TestClosedWAL(t *testing.T) {
	w, err := Open(testConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if _, err := w.Write(ctx, testEvent{}); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Write() error = %v, want ErrWALClosed", err)
	}
	if _, err := w.GetPending(ctx); !errors.Is(err, ErrWALClosed) {
		t.Errorf("GetPending() error = %v, want ErrWALClosed", err)
	}
}

func TestUpdateAttempt(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	id, err := w.Write(ctx, testEvent{EventID: "evt-1"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.UpdateAttempt(ctx, id, "store unavailable"); err != nil {
		t.Fatalf("UpdateAttempt() error = %v", err)
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if pending[0].Attempts != 1 || pending[0].LastError != "store unavailable" || pending[0].LastAttemptAt.IsZero() {
		t.Errorf("entry = %+v, want one recorded attempt", pending[0])
	}
}

func TestGetPending_Ordered(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := w.Write(ctx, testEvent{EventID: string(rune('a' + i))})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		ids = append(ids, id)
		time.Sleep(time.Millisecond)
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	for i := range ids {
		if pending[i].ID != ids[i] {
			t.Errorf("pending[%d] = %s, want %s", i, pending[i].ID, ids[i])
		}
	}
}

func TestClaims(t *testing.T) {
	w := openTestWAL(t)

	if !w.TryClaimEntry("e1") {
		t.Fatal("first claim should succeed")
	}
	if w.TryClaimEntry("e1") {
		t.Error("second claim should fail while held")
	}
	w.ReleaseEntry("e1")
	if !w.TryClaimEntry("e1") {
		t.Error("claim should succeed after release")
	}
}

func TestCompactor(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, err := w.Write(ctx, testEvent{EventID: string(rune('a' + i))})
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if i < 2 {
			if err := w.Confirm(ctx, id); err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
		}
	}

	removed, err := NewCompactor(w).Compact()
	if err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Compact() removed %d, want 2", removed)
	}

	stats := w.Stats()
	if stats.ConfirmedCount != 0 || stats.PendingCount != 1 {
		t.Errorf("after compaction pending/confirmed = %d/%d, want 1/0", stats.PendingCount, stats.ConfirmedCount)
	}
}
