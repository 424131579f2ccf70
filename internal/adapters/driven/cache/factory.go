// Package cache creates the query embedding and result caches from settings.
package cache

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"github.com/custodia-labs/canvai/internal/adapters/driven/cache/lru"
	"github.com/custodia-labs/canvai/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/canvai/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Cache names.
const (
	NameEmbeddings = "embeddings"
	NameResults    = "results"
)

// Set holds the two swappable caches used by the retriever.
type Set struct {
	Embeddings driven.Cache[[]float32]
	Results    driven.Cache[[]domain.SearchResult]

	client *goredis.Client
}

// Close releases the Redis connection, if any.
func (s *Set) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// NewSet builds both caches for the configured kind.
func NewSet(ctx context.Context, cfg domain.CacheSettings) (*Set, error) {
	switch cfg.Kind {
	case domain.CacheMemory, "":
		return &Set{
			Embeddings: memory.New[[]float32](),
			Results:    memory.New[[]domain.SearchResult](),
		}, nil

	case domain.CacheLRU:
		return &Set{
			Embeddings: lru.New[[]float32](cfg.Capacity, cfg.TTL),
			Results:    lru.New[[]domain.SearchResult](cfg.Capacity, cfg.TTL),
		}, nil

	case domain.CacheRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache: address not set: %w", domain.ErrInvalidInput)
		}
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("redis cache %s: %w", cfg.RedisAddr, err)
		}
		return &Set{
			Embeddings: redis.New[[]float32](client, NameEmbeddings, cfg.TTL),
			Results:    redis.New[[]domain.SearchResult](client, NameResults, cfg.TTL),
			client:     client,
		}, nil

	default:
		return nil, fmt.Errorf("cache kind %q: %w", cfg.Kind, domain.ErrInvalidInput)
	}
}
