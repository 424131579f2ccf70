// Package memory provides an unbounded in-process cache.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Cache is a mutex-guarded map. Entries live for the process lifetime.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{items: make(map[string]V)}
}

// Ensure Cache implements the interface.
var _ driven.Cache[string] = (*Cache[string])(nil)

// Get returns the cached value for key.
func (c *Cache[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// Put stores value under key.
func (c *Cache[V]) Put(_ context.Context, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
