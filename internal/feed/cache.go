package feed

import (
	"sync"
	"time"

	"github.com/connectos/backend/internal/metrics"
)

const (
	// CacheTTL is how long a resolved feed stays fresh.
	CacheTTL = 60 * time.Second

	// cacheMaxEntries bounds per-process memory; the oldest entry is
	// evicted when the cap is hit.
	cacheMaxEntries = 512

	cacheName = "feed"
)

// Clock lets tests control cache time.
type Clock func() time.Time

type cacheRecord struct {
	entries    []Entry
	resolvedAt time.Time
}

// Cache holds resolved feeds per viewer with a fixed TTL. Expired entries
// are kept until eviction so a failed refresh can fall back to stale data.
type Cache struct {
	mu    sync.Mutex
	slots map[string]cacheRecord
	clock Clock
}

func NewCache(clock Clock) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		slots: make(map[string]cacheRecord),
		clock: clock,
	}
}

// Get returns the cached entries for viewerID if they are still fresh.
// The returned slice is a copy: callers sort and slice feeds freely, and
// the cached ordering must survive concurrent requests untouched.
func (c *Cache) Get(viewerID string) ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.slots[viewerID]
	if !ok || c.clock().Sub(rec.resolvedAt) >= CacheTTL {
		metrics.Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
		return nil, false
	}
	metrics.Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
	return copyEntries(rec.entries), true
}

// GetStale returns the cached entries regardless of age. Used as a fallback
// when a refresh fails, so the viewer sees their last good feed instead of
// a blank one.
func (c *Cache) GetStale(viewerID string) ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.slots[viewerID]
	if !ok {
		return nil, false
	}
	metrics.Get().CacheStaleServedTotal.WithLabelValues(cacheName).Inc()
	return copyEntries(rec.entries), true
}

func copyEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Put stores a freshly resolved feed for viewerID, evicting the oldest entry
// if the cache is full. The slice is copied on the way in: the caller keeps
// sorting and slicing its own result after Put.
func (c *Cache) Put(viewerID string, entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.slots[viewerID]; !exists && len(c.slots) >= cacheMaxEntries {
		c.evictOldestLocked()
	}
	c.slots[viewerID] = cacheRecord{entries: copyEntries(entries), resolvedAt: c.clock()}
	metrics.Get().CacheEntries.WithLabelValues(cacheName).Set(float64(len(c.slots)))
}

// Invalidate drops viewerID's cached feed. Called on explicit refresh and
// after any follow mutation that could change feed membership.
func (c *Cache) Invalidate(viewerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.slots[viewerID]; ok {
		delete(c.slots, viewerID)
		metrics.Get().CacheInvalidationsTotal.WithLabelValues(cacheName).Inc()
		metrics.Get().CacheEntries.WithLabelValues(cacheName).Set(float64(len(c.slots)))
	}
}

// InvalidateAll drops every cached feed.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.slots)
	c.slots = make(map[string]cacheRecord)
	if n > 0 {
		metrics.Get().CacheInvalidationsTotal.WithLabelValues(cacheName).Add(float64(n))
	}
	metrics.Get().CacheEntries.WithLabelValues(cacheName).Set(0)
}

// Len reports the current number of cached viewers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, rec := range c.slots {
		if first || rec.resolvedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, rec.resolvedAt
			first = false
		}
	}
	if !first {
		delete(c.slots, oldestKey)
		metrics.Get().CacheEvictionsTotal.WithLabelValues(cacheName).Inc()
	}
}
