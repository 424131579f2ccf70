package flat

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index scans all vectors of a store for each query.
type Index struct {
	vectors   [][]float32
	dimension int
	metric    domain.Metric
}

// New builds an index over the entries of store. The store's vectors are
// shared, not copied; index stores are immutable once built.
func New(store *domain.IndexStore) (*Index, error) {
	if store == nil {
		return nil, fmt.Errorf("flat: nil store: %w", domain.ErrInvalidInput)
	}
	if err := store.Validate(); err != nil {
		return nil, fmt.Errorf("flat: store %q: %w", store.Name, err)
	}
	vectors := make([][]float32, len(store.Entries))
	for i, e := range store.Entries {
		vectors[i] = e.Vector
	}
	return &Index{
		vectors:   vectors,
		dimension: store.Dimension,
		metric:    store.Metric,
	}, nil
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(store *domain.IndexStore) (driven.VectorIndex, error) {
	return New(store)
}

// Search returns the k best entries. Inner product ranks descending,
// L2 ranks ascending. Ties keep entry order.
func (idx *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	// An empty store may carry no dimension; it matches any query.
	if k <= 0 || len(idx.vectors) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("flat: query has %d dimensions, index has %d: %w",
			len(query), idx.dimension, domain.ErrDimensionMismatch)
	}

	hits := make([]driven.VectorHit, len(idx.vectors))
	for i, v := range idx.vectors {
		var raw float64
		if idx.metric == domain.MetricL2 {
			raw = domain.SquaredL2(query, v)
		} else {
			raw = domain.Dot(query, v)
		}
		hits[i] = driven.VectorHit{Position: i, Raw: raw}
	}

	if idx.metric == domain.MetricL2 {
		sort.SliceStable(hits, func(a, b int) bool { return hits[a].Raw < hits[b].Raw })
	} else {
		sort.SliceStable(hits, func(a, b int) bool { return hits[a].Raw > hits[b].Raw })
	}

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Dimension returns the vector size.
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Metric returns the raw distance the index reports.
func (idx *Index) Metric() domain.Metric {
	return idx.metric
}
