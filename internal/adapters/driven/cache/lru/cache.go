// Package lru provides a bounded in-process cache with optional expiry.
package lru

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// DefaultCapacity is used when no positive capacity is given.
const DefaultCapacity = 512

// Ensure Cache implements the interface.
var _ driven.Cache[string] = (*Cache[string])(nil)

// Cache evicts the least recently used entry once capacity is reached.
// Entries older than the TTL are treated as misses; a zero TTL never expires.
type Cache[V any] struct {
	lru *expirable.LRU[string, V]
}

// New creates a cache holding at most capacity entries.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache[V]{lru: expirable.NewLRU[string, V](capacity, nil, ttl)}
}

// Get returns the cached value for key and marks it recently used.
func (c *Cache[V]) Get(_ context.Context, key string) (V, bool) {
	return c.lru.Get(key)
}

// Put stores value under key, evicting the oldest entry when full.
func (c *Cache[V]) Put(_ context.Context, key string, value V) {
	c.lru.Add(key, value)
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Purge removes all entries.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}
