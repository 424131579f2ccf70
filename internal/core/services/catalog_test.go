package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/canvai/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/canvai/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

func saveCourses(t *testing.T, repo *memory.IndexRepository, n int) {
	t.Helper()
	store := &domain.IndexStore{Name: "courses", Dimension: 2, Metric: domain.MetricInnerProduct}
	for i := 0; i < n; i++ {
		store.Entries = append(store.Entries, domain.IndexEntry{Vector: []float32{1, 0}, Document: domain.Document{ID: "c"}})
	}
	require.NoError(t, repo.Save(context.Background(), store))
}

func TestCatalog_OpenCachesStore(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewIndexRepository()
	saveCourses(t, repo, 1)
	metrics := newRecordingMetrics()
	c := NewCatalog(repo, flat.Factory)
	c.SetMetrics(metrics)

	first, err := c.Open(ctx, "courses")
	require.NoError(t, err)
	saveCourses(t, repo, 3)
	second, err := c.Open(ctx, "courses")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, second.Store.Len())
	assert.Equal(t, 1, metrics.hits[cacheStores])
	assert.Equal(t, []string{"courses"}, c.Loaded())
}

func TestCatalog_Forget(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewIndexRepository()
	saveCourses(t, repo, 1)
	c := NewCatalog(repo, flat.Factory)

	_, err := c.Open(ctx, "courses")
	require.NoError(t, err)
	saveCourses(t, repo, 3)
	c.Forget("courses")

	reloaded, err := c.Open(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Store.Len())
	assert.Equal(t, 3, reloaded.Index.Len())
}

func TestCatalog_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing store", func(t *testing.T) {
		c := NewCatalog(memory.NewIndexRepository(), flat.Factory)
		_, err := c.Open(ctx, "grades")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, c.Loaded())
	})

	t.Run("index factory failure", func(t *testing.T) {
		repo := memory.NewIndexRepository()
		saveCourses(t, repo, 1)
		boom := errors.New("boom")
		c := NewCatalog(repo, func(*domain.IndexStore) (driven.VectorIndex, error) { return nil, boom })

		_, err := c.Open(ctx, "courses")

		assert.ErrorIs(t, err, boom)
		assert.Empty(t, c.Loaded())
	})
}
