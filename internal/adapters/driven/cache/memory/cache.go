// Package memory provides an in-process embedding cache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.EmbeddingCache = (*Cache)(nil)

type entry struct {
	vector  []float32
	expires time.Time
}

// Cache is a map-backed EmbeddingCache with an optional TTL.
// Vectors are copied on the way in and out so callers may mutate them.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache. A ttl of zero keeps entries forever.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached vector or domain.ErrCacheMiss.
func (c *Cache) Get(_ context.Context, key string) ([]float32, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, domain.ErrCacheMiss
	}
	return append([]float32(nil), e.vector...), nil
}

// Put stores a copy of vector under key.
func (c *Cache) Put(_ context.Context, key string, vector []float32) error {
	e := entry{vector: append([]float32(nil), vector...)}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
