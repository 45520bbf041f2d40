// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/pantry/internal/eventprocessor"
	"github.com/tomtom215/pantry/internal/models"
	"github.com/tomtom215/pantry/internal/recommend"
)

type fakeEngine struct {
	mu          sync.Mutex
	recs        []models.Recommendation
	gotUser     string
	gotListIDs  []string
	similar     []models.SimilarUser
	candidates  []models.CollaborativeCandidate
	rebuildErr  error
	lastRebuild *recommend.RebuildReport
}

func (f *fakeEngine) Recommend(_ context.Context, userID string, listIDs []string) []models.Recommendation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUser = userID
	f.gotListIDs = listIDs
	return f.recs
}

func (f *fakeEngine) FindSimilarUsers(_ context.Context, _ string) ([]models.SimilarUser, error) {
	return f.similar, nil
}

func (f *fakeEngine) GetCollaborativeRecommendations(_ context.Context, _ string) ([]models.CollaborativeCandidate, error) {
	return f.candidates, nil
}

func (f *fakeEngine) BuildRecommendationsFromHistory(_ context.Context) (*recommend.RebuildReport, error) {
	if f.rebuildErr != nil {
		return nil, f.rebuildErr
	}
	report := &recommend.RebuildReport{StartedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Events: 4, Upserted: 2}
	f.mu.Lock()
	f.lastRebuild = report
	f.mu.Unlock()
	return report, nil
}

func (f *fakeEngine) LastRebuild() *recommend.RebuildReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRebuild
}

type fakeStore struct {
	mu      sync.Mutex
	pingErr error
	lists   map[string]*models.List
	items   map[string][]*models.ListItem
	records map[string]*models.RecommendationRecord
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:   make(map[string]*models.List),
		items:   make(map[string][]*models.ListItem),
		records: make(map[string]*models.RecommendationRecord),
	}
}

func (s *fakeStore) Ping(_ context.Context) error { return s.pingErr }

func (s *fakeStore) GetRecord(_ context.Context, userID, itemName string) (*models.RecommendationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID+"/"+itemName]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) CreateList(_ context.Context, list *models.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list.ID == "" {
		s.nextID++
		list.ID = fmt.Sprintf("list-%d", s.nextID)
	}
	cp := *list
	s.lists[list.ID] = &cp
	return nil
}

func (s *fakeStore) GetList(_ context.Context, listID string) (*models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[listID]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", listID, models.ErrNotFound)
	}
	cp := *list
	return &cp, nil
}

func (s *fakeStore) SetListStatus(_ context.Context, listID string, completed, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[listID]
	if !ok {
		return models.ErrNotFound
	}
	list.Completed = completed
	list.Archived = archived
	return nil
}

func (s *fakeStore) AddListItem(_ context.Context, item *models.ListItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		s.nextID++
		item.ID = fmt.Sprintf("item-%d", s.nextID)
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	cp := *item
	s.items[item.ListID] = append(s.items[item.ListID], &cp)
	return nil
}

func (s *fakeStore) ListItems(_ context.Context, listID string) ([]models.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []models.ListItem{}
	for _, item := range s.items[listID] {
		items = append(items, *item)
	}
	return items, nil
}

func (s *fakeStore) MarkPurchased(_ context.Context, listID, itemID, _ string, _ time.Time) (*models.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items[listID] {
		if item.ID != itemID {
			continue
		}
		cp := *item
		if item.Purchased {
			return &cp, models.ErrAlreadyPurchased
		}
		item.Purchased = true
		cp.Purchased = true
		return &cp, nil
	}
	return nil, models.ErrNotFound
}

type fakeIngester struct {
	mu     sync.Mutex
	events []models.PurchaseEvent
	err    error
}

func (f *fakeIngester) Ingest(_ context.Context, event *models.PurchaseEvent, _ string) (eventprocessor.IngestResult, error) {
	if f.err != nil {
		return 0, f.err
	}
	if event.EventID == "" {
		event.EventID = "generated-id"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return eventprocessor.IngestApplied, nil
}

func (f *fakeIngester) received() []models.PurchaseEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PurchaseEvent(nil), f.events...)
}

var errPingFailed = errors.New("connection refused")

type testServer struct {
	engine   *fakeEngine
	store    *fakeStore
	ingester *fakeIngester
	handler  *Handler
	mux      http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		engine:   &fakeEngine{},
		store:    newFakeStore(),
		ingester: &fakeIngester{},
	}
	ts.handler = NewHandler(ts.engine, ts.store, ts.ingester, "test")
	ts.handler.SetClock(func() time.Time { return time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC) })

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	ts.mux = NewRouter(ts.handler, cfg).Setup()
	return ts
}

// do sends a request and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		Count *int `json:"count"`
	} `json:"metadata"`
	Error *models.APIError `json:"error"`
}

func (e envelope) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(e.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}
