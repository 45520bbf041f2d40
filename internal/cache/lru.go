// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/tomtom215/pantry/internal/metrics"
)

type lruEntry struct {
	key       string
	seenAt    time.Time
	expiresAt time.Time
}

// LRUCache is a thread-safe LRU set of keys with a per-entry TTL, used to
// drop redelivered purchase events before they reach the WAL.
// Expired entries are removed lazily on access.
type LRUCache struct {
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // front is most recently used
	items map[string]*list.Element

	hits      int64
	misses    int64
	evictions int64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// NewLRUCache creates a cache. Non-positive capacity defaults to 10000 and
// non-positive ttl to one hour. name labels the cache metrics.
func NewLRUCache(name string, capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LRUCache{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// IsDuplicate reports whether key was seen within the TTL. A key that was
// not seen is recorded, so the first caller gets false and later callers true.
func (c *LRUCache) IsDuplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*lruEntry)
		if now.Before(entry.expiresAt) {
			c.order.MoveToFront(el)
			c.hits++
			metrics.CacheHits.WithLabelValues(c.name).Inc()
			return true
		}
		c.removeElement(el)
	}

	c.misses++
	c.items[key] = c.order.PushFront(&lruEntry{key: key, seenAt: now, expiresAt: now.Add(c.ttl)})
	for len(c.items) > c.capacity {
		c.evictOldest()
	}
	return false
}

// Contains reports whether key is present and unexpired without touching
// recency.
func (c *LRUCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	return ok && c.now().Before(el.Value.(*lruEntry).expiresAt)
}

// SeenAt returns when key was first recorded.
func (c *LRUCache) SeenAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return time.Time{}, false
	}
	entry := el.Value.(*lruEntry)
	if !c.now().Before(entry.expiresAt) {
		return time.Time{}, false
	}
	return entry.seenAt, true
}

// Remove forgets key. The ingest path calls it when processing fails so the
// redelivered message is not mistaken for a duplicate.
func (c *LRUCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		return true
	}
	return false
}

// CleanupExpired removes every expired entry and returns how many were removed.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*lruEntry).expiresAt) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of entries, including expired ones not yet removed.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// Stats returns a snapshot of the cache counters.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:      len(c.items),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (c *LRUCache) evictOldest() {
	if el := c.order.Back(); el != nil {
		c.removeElement(el)
		c.evictions++
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
}

func (c *LRUCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*lruEntry).key)
}
