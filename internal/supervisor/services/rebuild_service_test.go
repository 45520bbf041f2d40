// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pantry/internal/recommend"
)

type mockRebuilder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockRebuilder) BuildRecommendationsFromHistory(_ context.Context) (*recommend.RebuildReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &recommend.RebuildReport{Upserted: 1}, nil
}

func (m *mockRebuilder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func runFor(svc *RebuildSchedulerService, d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	_ = svc.Serve(ctx)
}

func TestRebuildScheduler(t *testing.T) {
	tests := []struct {
		name      string
		cfg       RebuildSchedulerConfig
		err       error
		runFor    time.Duration
		wantCalls func(int) bool
	}{
		{
			name:      "startup only",
			cfg:       RebuildSchedulerConfig{OnStartup: true},
			runFor:    100 * time.Millisecond,
			wantCalls: func(n int) bool { return n == 1 },
		},
		{
			name:      "disabled",
			cfg:       RebuildSchedulerConfig{},
			runFor:    100 * time.Millisecond,
			wantCalls: func(n int) bool { return n == 0 },
		},
		{
			name:      "scheduled",
			cfg:       RebuildSchedulerConfig{Interval: 30 * time.Millisecond},
			runFor:    150 * time.Millisecond,
			wantCalls: func(n int) bool { return n >= 2 },
		},
		{
			name:      "rebuild already running is not fatal",
			cfg:       RebuildSchedulerConfig{OnStartup: true, Interval: 30 * time.Millisecond},
			err:       recommend.ErrRebuildInProgress,
			runFor:    100 * time.Millisecond,
			wantCalls: func(n int) bool { return n >= 2 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockRebuilder{err: tt.err}
			svc := NewRebuildSchedulerService(engine, tt.cfg, zerolog.Nop())

			runFor(svc, tt.runFor)
			if got := engine.count(); !tt.wantCalls(got) {
				t.Errorf("rebuild ran %d times", got)
			}
		})
	}
}

func TestRebuildScheduler_String(t *testing.T) {
	svc := NewRebuildSchedulerService(&mockRebuilder{}, RebuildSchedulerConfig{}, zerolog.Nop())
	if got := svc.String(); got != "rebuild-scheduler" {
		t.Errorf("String() = %q", got)
	}
	if svc.config.Timeout != 30*time.Minute {
		t.Errorf("default timeout = %v, want 30m", svc.config.Timeout)
	}
}
