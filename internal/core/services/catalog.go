package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/logger"
)

// LoadedStore is a persisted store together with its search index.
type LoadedStore struct {
	Store *domain.IndexStore
	Index driven.VectorIndex
}

// Catalog loads index stores on first use and keeps them for the process
// lifetime. A rebuild on disk is not noticed until Forget is called.
type Catalog struct {
	repo    driven.IndexRepository
	factory driven.VectorIndexFactory
	metrics driven.Metrics

	mu     sync.Mutex
	loaded map[string]*LoadedStore
}

// NewCatalog creates a catalog reading from repo.
func NewCatalog(repo driven.IndexRepository, factory driven.VectorIndexFactory) *Catalog {
	return &Catalog{
		repo:    repo,
		factory: factory,
		metrics: nopMetrics{},
		loaded:  make(map[string]*LoadedStore),
	}
}

// SetMetrics sets the metrics recorder.
func (c *Catalog) SetMetrics(m driven.Metrics) {
	if m != nil {
		c.metrics = m
	}
}

// Open returns the loaded store for name, loading it on a miss.
// Returns an error wrapping domain.ErrNotFound when the store was never built.
func (c *Catalog) Open(ctx context.Context, name string) (*LoadedStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ls, ok := c.loaded[name]; ok {
		c.metrics.CacheLookup(cacheStores, true)
		return ls, nil
	}
	c.metrics.CacheLookup(cacheStores, false)

	store, err := c.repo.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load store %q: %w", name, err)
	}
	index, err := c.factory(store)
	if err != nil {
		return nil, fmt.Errorf("index store %q: %w", name, err)
	}

	logger.Debug("Loaded store %q: %d entries, dim=%d, metric=%s", name, store.Len(), store.Dimension, store.Metric)
	ls := &LoadedStore{Store: store, Index: index}
	c.loaded[name] = ls
	return ls, nil
}

// Forget drops a loaded store so the next Open reads it again.
func (c *Catalog) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loaded, name)
}

// Loaded returns the names of stores currently held in memory.
func (c *Catalog) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.loaded))
	for name := range c.loaded {
		names = append(names, name)
	}
	return names
}
