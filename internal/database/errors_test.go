// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package database

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestIsTransactionConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("syntax error"), false},
		{"transaction conflict", errors.New("TransactionContext Error: Transaction conflict on commit"), true},
		{"update conflict", errors.New("Conflict on update of row 4"), true},
		{"altered table", errors.New("cannot update a table that has been altered"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransactionConflict(tt.err); got != tt.want {
				t.Errorf("isTransactionConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithConflictRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		calls := 0
		err := withConflictRetry(ctx, "test", func(context.Context) error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("err = %v calls = %d, want nil 1", err, calls)
		}
	})

	t.Run("retries conflicts then succeeds", func(t *testing.T) {
		calls := 0
		err := withConflictRetry(ctx, "test", func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("Transaction conflict")
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v calls = %d, want nil 3", err, calls)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := withConflictRetry(ctx, "test", func(context.Context) error {
			calls++
			return errors.New("Transaction conflict")
		})
		if err == nil || !strings.Contains(err.Error(), "max retries exceeded") {
			t.Errorf("err = %v, want max retries exceeded", err)
		}
		if calls != maxConflictRetries {
			t.Errorf("calls = %d, want %d", calls, maxConflictRetries)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		sentinel := errors.New("constraint violated")
		calls := 0
		err := withConflictRetry(ctx, "test", func(context.Context) error {
			calls++
			return sentinel
		})
		if !errors.Is(err, sentinel) || calls != 1 {
			t.Errorf("err = %v calls = %d, want sentinel 1", err, calls)
		}
	})

	t.Run("canceled context stops retries", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := withConflictRetry(canceled, "test", func(context.Context) error {
			return errors.New("Transaction conflict")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestCloseHelpers(t *testing.T) {
	closed := 0
	ok := closerFunc(func() error { closed++; return nil })
	failing := closerFunc(func() error { closed++; return errors.New("boom") })

	closeWithLog(ok, nil, "ok")
	closeWithLog(failing, nil, "failing")
	closeWithLog(nil, nil, "nil")
	closeQuietly(failing)
	closeQuietly(nil)

	if closed != 3 {
		t.Errorf("closed = %d, want 3", closed)
	}
}
