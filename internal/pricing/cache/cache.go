// Package cache holds aggregated price lists per traveler count.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Banders2/CheapPlayitasApi/internal/pricing"
)

// Cache is an in-memory TTL cache with request collapsing: concurrent
// callers for the same key share one computation. An empty computed list is
// never retained, so a run of upstream failures is retried on the next
// request instead of being served for the full TTL window.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	ttl      time.Duration
	inflight map[string]*inflightCompute
	done     chan struct{}
}

type cacheEntry struct {
	itineraries []pricing.Itinerary
	expiresAt   time.Time
}

type inflightCompute struct {
	done        chan struct{}
	itineraries []pricing.Itinerary
}

// New creates a Cache whose entries expire ttl after being stored.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries:  make(map[string]*cacheEntry),
		ttl:      ttl,
		inflight: make(map[string]*inflightCompute),
		done:     make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	close(c.done)
}

// Key derives the cache key for a traveler count.
func (c *Cache) Key(persons int) string {
	return strconv.Itoa(persons)
}

// GetOrCompute returns the cached list for key, or runs compute exactly
// once and shares its result with every concurrent caller of the same key.
// Unrelated keys compute concurrently. The second return reports whether
// the value came from the cache.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func() []pricing.Itinerary) ([]pricing.Itinerary, bool) {
	c.mu.Lock()

	if entry, ok := c.entries[key]; ok && time.Now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.itineraries, true
	}

	if fl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.itineraries, false
		case <-ctx.Done():
			return nil, false
		}
	}

	fl := &inflightCompute{done: make(chan struct{})}
	c.inflight[key] = fl
	c.mu.Unlock()

	itineraries := compute()

	c.mu.Lock()
	fl.itineraries = itineraries
	if len(itineraries) > 0 {
		c.entries[key] = &cacheEntry{
			itineraries: itineraries,
			expiresAt:   time.Now().Add(c.ttl),
		}
	}
	delete(c.inflight, key)
	c.mu.Unlock()

	close(fl.done)
	return itineraries, false
}

// Invalidate removes a specific key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// cleanup periodically removes expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}
