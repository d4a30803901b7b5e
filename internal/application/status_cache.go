package application

import (
	"sync"
	"time"
)

// statusCache stores recently computed floor-map status views so repeated
// polling of the same map and date does not re-run the availability engine
// for every resource. Display status tolerates short staleness; the write
// path never consults this cache.
type statusCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]statusCacheEntry
}

type statusCacheEntry struct {
	views     []ResourceStatusView
	expiresAt time.Time
}

func newStatusCache(ttl time.Duration, maxEntries int, now func() time.Time) *statusCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &statusCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]statusCacheEntry),
	}
}

func (c *statusCache) Get(key string) ([]ResourceStatusView, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneStatusViews(entry.views), true
}

func (c *statusCache) Store(key string, views []ResourceStatusView) {
	if c == nil {
		return
	}
	cloned := cloneStatusViews(views)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = statusCacheEntry{views: cloned, expiresAt: expiry}
}

func (c *statusCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *statusCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneStatusViews(views []ResourceStatusView) []ResourceStatusView {
	if len(views) == 0 {
		return nil
	}
	out := make([]ResourceStatusView, len(views))
	copy(out, views)
	return out
}
