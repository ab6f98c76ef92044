package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
)

// Ensure ContentCache implements the interface.
var _ driven.ContentCache = (*ContentCache)(nil)

// ContentCache is an in-memory driven.ContentCache.
type ContentCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CachedContent
}

// NewContentCache creates an empty cache.
func NewContentCache() *ContentCache {
	return &ContentCache{entries: make(map[string]domain.CachedContent)}
}

// Get returns domain.ErrNotFound for unknown keys.
func (c *ContentCache) Get(_ context.Context, key string) (*domain.CachedContent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Put stores content under key.
func (c *ContentCache) Put(_ context.Context, key string, content domain.CachedContent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = content
	return nil
}

// Delete removes key. Missing keys are ignored.
func (c *ContentCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
