package fetch

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a TTL response cache with in-flight request deduplication,
// keyed by URL.
//
// It exists so that several widgets pointed at the same endpoint share one
// request per TTL window instead of each issuing their own. The cache is an
// explicit object passed by reference to the fetchers that share it; there
// is no package-level instance.
//
// Concurrent fetches for the same key collapse into a single request even
// when the TTL is zero. Only successful bodies are stored; failures are
// never cached.
type Cache struct {
	ttl time.Duration

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

// NewCache creates a [Cache] whose entries expire after ttl. A ttl of zero
// disables storage but keeps the in-flight deduplication.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// GetOrFetch returns a fresh cached body for key, or runs fetch to obtain
// one. Concurrent callers for the same key share a single fetch invocation
// and all receive its outcome.
func (c *Cache) GetOrFetch(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if body, ok := c.lookup(key); ok {
		return body, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// a concurrent caller may have populated the entry while this
		// one waited on the flight group
		if body, ok := c.lookup(key); ok {
			return body, nil
		}

		body, err := fetch()
		if err != nil {
			return nil, err
		}
		c.store(key, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate drops the entry for key, forcing the next GetOrFetch to hit
// the network. Used by manual refreshes so they bypass a still-fresh entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.body, true
}

func (c *Cache) store(key string, body []byte) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{body: body, fetchedAt: time.Now()}
	c.mu.Unlock()
}
