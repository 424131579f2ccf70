// Package redis provides a cache shared through a Redis server.
// Values are stored as JSON under a per-cache key prefix.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/logger"
)

// KeyPrefix namespaces every key written by canvai.
const KeyPrefix = "canvai:"

// Ensure Cache implements the interface.
var _ driven.Cache[string] = (*Cache[string])(nil)

// client is the subset of the Redis API the cache uses.
type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// Cache reads and writes JSON values. Redis errors degrade to misses so a
// down server slows searches instead of failing them.
type Cache[V any] struct {
	client client
	prefix string
	ttl    time.Duration
}

// NewClient connects to addr, verifying the server answers.
func NewClient(ctx context.Context, addr string, db int) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{Addr: addr, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// New creates a cache named name on c. A zero ttl keeps entries until evicted by the server.
func New[V any](c *goredis.Client, name string, ttl time.Duration) *Cache[V] {
	return newCache[V](c, name, ttl)
}

func newCache[V any](c client, name string, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		client: c,
		prefix: KeyPrefix + name + ":",
		ttl:    ttl,
	}
}

// Get returns the decoded value stored under key.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.Warn("redis get %s: %v", c.prefix+key, err)
		}
		return zero, false
	}
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("redis decode %s: %v", c.prefix+key, err)
		return zero, false
	}
	return v, true
}

// Put encodes value and stores it under key.
func (c *Cache[V]) Put(ctx context.Context, key string, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("redis encode %s: %v", c.prefix+key, err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		logger.Warn("redis set %s: %v", c.prefix+key, err)
	}
}
