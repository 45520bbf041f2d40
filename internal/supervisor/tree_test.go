// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/pantry/internal/logging"
)

// countingService runs until canceled, failing the first `fails` starts.
type countingService struct {
	name   string
	fails  int32
	starts atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	if s.starts.Add(1) <= s.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func newTestTree(t *testing.T, cfg TreeConfig) *SupervisorTree {
	t.Helper()
	tree, err := NewSupervisorTree(logging.NewSlogLoggerWithLevel("error"), cfg)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	return tree
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree := newTestTree(t, TreeConfig{})

	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	layers := []struct {
		name string
		add  func(*SupervisorTree, suture.Service) suture.ServiceToken
	}{
		{"data", (*SupervisorTree).AddDataService},
		{"engine", (*SupervisorTree).AddEngineService},
		{"messaging", (*SupervisorTree).AddMessagingService},
		{"api", (*SupervisorTree).AddAPIService},
	}

	for _, layer := range layers {
		t.Run(layer.name, func(t *testing.T) {
			tree := newTestTree(t, TreeConfig{ShutdownTimeout: time.Second})
			svc := &countingService{name: layer.name + "-service"}
			layer.add(tree, svc)

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			errCh := tree.ServeBackground(ctx)

			time.Sleep(100 * time.Millisecond)
			if svc.starts.Load() < 1 {
				t.Errorf("%s service was not started", layer.name)
			}

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, context.DeadlineExceeded) {
					t.Errorf("unexpected error: %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Error("tree did not shut down in time")
			}
		})
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree := newTestTree(t, TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := &countingService{name: "consumer", fails: 2}
	stable := &countingService{name: "http"}
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	time.Sleep(200 * time.Millisecond)
	if got := failing.starts.Load(); got < 3 {
		t.Errorf("expected at least 3 starts for failing service, got %d", got)
	}
	if got := stable.starts.Load(); got != 1 {
		t.Errorf("stable service started %d times, want 1", got)
	}
	<-errCh
}
