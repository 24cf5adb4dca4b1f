package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheExpiration keeps near-simultaneous pollers of the same URL
// (current-match poll plus look-ahead) from doubling outbound requests.
const DefaultCacheExpiration = 3 * time.Second

// Fetcher is the network dependency of the cache.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type cacheEntry struct {
	data      []byte
	fetchedAt time.Time
}

// Cache deduplicates raw score payloads per URL for a short window. It is
// safe for use from the engine loop and background pollers concurrently.
// Retry policy lives in the underlying Fetcher, not here.
type Cache struct {
	mu         sync.Mutex
	fetcher    Fetcher
	expiration time.Duration
	entries    map[string]cacheEntry
	now        func() time.Time
}

// NewCache wraps a fetcher with a TTL byte cache.
func NewCache(fetcher Fetcher, expiration time.Duration) *Cache {
	if expiration <= 0 {
		expiration = DefaultCacheExpiration
	}
	return &Cache{
		fetcher:    fetcher,
		expiration: expiration,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// Get returns the cached bytes for url when fresh, otherwise fetches,
// stores, and returns them. Fetch failures are not cached.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	if entry, ok := c.entries[url]; ok && c.now().Sub(entry.fetchedAt) < c.expiration {
		data := entry.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[url] = cacheEntry{data: data, fetchedAt: c.now()}
	c.mu.Unlock()

	return data, nil
}

// Invalidate drops the cached entry for url, if any.
func (c *Cache) Invalidate(url string) {
	c.mu.Lock()
	delete(c.entries, url)
	c.mu.Unlock()
}

// ClearAll drops every cached entry.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
