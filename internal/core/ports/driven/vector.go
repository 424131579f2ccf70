package driven

import "github.com/custodia-labs/canvai/internal/core/domain"

// VectorIndex provides nearest-neighbour search over a loaded store.
// It is built once per loaded store and is read-only afterwards.
type VectorIndex interface {
	// Search finds the k nearest entries to the query vector.
	// Hits are ordered best first; ties keep entry order.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimension returns the vector size.
	Dimension() int

	// Metric returns the raw distance the index reports.
	Metric() domain.Metric
}

// VectorHit represents a raw nearest-neighbour result.
type VectorHit struct {
	// Position is the entry index within the store.
	Position int

	// Raw is the metric value: inner product or squared L2 distance.
	Raw float64
}

// VectorIndexFactory builds a searchable index for a loaded store.
type VectorIndexFactory func(store *domain.IndexStore) (VectorIndex, error)
