package engine

import (
	"sync"
	"time"

	"github.com/notiva/notiva/internal/core"
)

// responseCache stores search responses keyed by query+filters. Eviction
// is explicit FIFO by insertion order, not dependent on map iteration.
// TTL is checked on read.
type responseCache struct {
	ttl time.Duration
	cap int

	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string
	clock   func() time.Time
}

type cacheEntry struct {
	response *core.SearchResponse
	storedAt time.Time
}

func newResponseCache(ttl time.Duration, capacity int) *responseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &responseCache{
		ttl:     ttl,
		cap:     capacity,
		entries: make(map[string]cacheEntry),
	}
}

func (c *responseCache) Get(key string) (*core.SearchResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}
	return entry.response, true
}

func (c *responseCache) Put(key string, response *core.SearchResponse) {
	if response == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{response: response, storedAt: c.now()}

	for len(c.order) > c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *responseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *responseCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *responseCache) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now().UTC()
}
