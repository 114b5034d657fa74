package metadata

import (
	"context"
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

// CachedFetcher wraps a Fetcher with a per-table TTL cache. Failures are not cached.
type CachedFetcher struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	doc       *Document
	expiresAt time.Time
}

// CacheConfig configures the cache.
type CacheConfig struct {
	TTL time.Duration
}

// NewCachedFetcher creates a caching wrapper around fetcher.
func NewCachedFetcher(fetcher Fetcher, cfg CacheConfig) *CachedFetcher {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedFetcher{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Fetch returns the cached document for the table or fetches it.
func (c *CachedFetcher) Fetch(ctx context.Context, serviceURL, schema, table string) (*Document, error) {
	key := serviceURL + "\x00" + schema + "\x00" + table

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.doc, nil
	}

	doc, err := c.fetcher.Fetch(ctx, serviceURL, schema, table)
	if err != nil {
		return nil, err
	}

	now := c.now()
	c.mu.Lock()
	c.evictExpired(now)
	c.entries[key] = cacheEntry{doc: doc, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()

	return doc, nil
}

// evictExpired drops every entry past its expiry. c.mu must be held.
func (c *CachedFetcher) evictExpired(now time.Time) {
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Invalidate clears the cache.
func (c *CachedFetcher) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
