// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pantry/internal/models"
)

var errStoreDown = errors.New("store down")

// mockStore implements Store in memory.
type mockStore struct {
	mu          sync.Mutex
	records     map[string]map[string]models.RecommendationRecord
	listItems   map[string][]models.ListItem
	activeLists map[string][]string
	events      []models.PurchaseEvent

	getErr         error
	listErr        error
	upsertErr      error
	failUpsertItem string
	upserts        int
	similarUpdates int
}

func newMockStore() *mockStore {
	return &mockStore{
		records:     make(map[string]map[string]models.RecommendationRecord),
		listItems:   make(map[string][]models.ListItem),
		activeLists: make(map[string][]string),
	}
}

func cloneRecord(rec *models.RecommendationRecord) models.RecommendationRecord {
	c := *rec
	if rec.LastPurchased != nil {
		t := *rec.LastPurchased
		c.LastPurchased = &t
	}
	if rec.PurchaseHistory != nil {
		c.PurchaseHistory = append([]models.PurchaseEntry{}, rec.PurchaseHistory...)
	}
	if rec.FeatureVector != nil {
		c.FeatureVector = append([]float64{}, rec.FeatureVector...)
	}
	if rec.SimilarItems != nil {
		c.SimilarItems = append([]models.SimilarItem{}, rec.SimilarItems...)
	}
	return c
}

func (m *mockStore) put(rec models.RecommendationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records[rec.UserID] == nil {
		m.records[rec.UserID] = make(map[string]models.RecommendationRecord)
	}
	m.records[rec.UserID][rec.ItemName] = cloneRecord(&rec)
}

func (m *mockStore) get(userID, item string) (models.RecommendationRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID][item]
	if !ok {
		return rec, false
	}
	return cloneRecord(&rec), true
}

func (m *mockStore) sortedRecords(userID string) []models.RecommendationRecord {
	out := make([]models.RecommendationRecord, 0, len(m.records[userID]))
	for _, rec := range m.records[userID] {
		out = append(out, cloneRecord(&rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out
}

func (m *mockStore) GetRecord(ctx context.Context, userID, itemName string) (*models.RecommendationRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.get(userID, itemName)
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", userID, itemName, ErrRecordNotFound)
	}
	return &rec, nil
}

func (m *mockStore) ListRecords(ctx context.Context, userID string) ([]models.RecommendationRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedRecords(userID), nil
}

func (m *mockStore) UpsertRecord(ctx context.Context, rec *models.RecommendationRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.failUpsertItem != "" && rec.ItemName == m.failUpsertItem {
		return errStoreDown
	}
	m.put(*rec)
	m.mu.Lock()
	m.upserts++
	m.mu.Unlock()
	return nil
}

func (m *mockStore) UpdateSimilarItems(ctx context.Context, userID, itemName string, similar []models.SimilarItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID][itemName]
	if !ok {
		return ErrRecordNotFound
	}
	rec.SimilarItems = append([]models.SimilarItem{}, similar...)
	m.records[userID][itemName] = rec
	m.similarUpdates++
	return nil
}

func (m *mockStore) UserItemSets(ctx context.Context, excludeUserID string, itemNames []string) (map[string][]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]string)
	for userID, recs := range m.records {
		if userID == excludeUserID {
			continue
		}
		shares := false
		for _, n := range itemNames {
			if _, ok := recs[n]; ok {
				shares = true
				break
			}
		}
		if !shares {
			continue
		}
		for name := range recs {
			out[userID] = append(out[userID], name)
		}
	}
	return out, nil
}

func (m *mockStore) ListConfidentRecords(ctx context.Context, userID string, minConfidence float64) ([]models.RecommendationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RecommendationRecord
	for _, rec := range m.sortedRecords(userID) {
		if rec.Confidence >= minConfidence {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockStore) UnpurchasedItemNames(ctx context.Context, listIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, id := range listIDs {
		for _, it := range m.listItems[id] {
			if !it.Purchased {
				out = append(out, it.Name)
			}
		}
	}
	return out, nil
}

func (m *mockStore) ActiveListIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeLists[userID], nil
}

func (m *mockStore) ListPurchaseEvents(ctx context.Context) ([]models.PurchaseEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PurchaseEvent{}, m.events...), nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// recordingRefresher captures submitted users.
type recordingRefresher struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (r *recordingRefresher) Submit(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return r.err
}

func (r *recordingRefresher) submitted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.users...)
}

// Sunday 2026-01-04 09:00 UTC.
var base = time.Date(2026, time.January, 4, 9, 0, 0, 0, time.UTC)

func daysAfter(n int) time.Time {
	return base.AddDate(0, 0, n)
}

// newTestEngine returns an engine with sampling disabled, a mock store and
// a fake clock at base.
func newTestEngine(t *testing.T) (*Engine, *mockStore, *fakeClock) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Refresh.SampleRate = 0

	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	store := newMockStore()
	clock := &fakeClock{now: base}
	e.SetStore(store)
	e.SetClock(clock.Now)
	return e, store, clock
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// seedRecord builds a record last purchased at lastPurchased.
func seedRecord(userID, item string, freq int, conf float64, lastPurchased time.Time) models.RecommendationRecord {
	last := lastPurchased
	return models.RecommendationRecord{
		UserID:          userID,
		ItemName:        item,
		Category:        "Grocery",
		Frequency:       freq,
		Confidence:      conf,
		LastPurchased:   &last,
		PurchaseHistory: []models.PurchaseEntry{{Date: last, Quantity: 1}},
		SimilarItems:    []models.SimilarItem{},
		CreatedAt:       base,
		UpdatedAt:       base,
	}
}
