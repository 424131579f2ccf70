package domain

import "time"

// Metric identifies the raw distance an index reports for a neighbour.
type Metric string

// Supported metrics.
const (
	// MetricInnerProduct reports the dot product of unit vectors, which is
	// already the cosine similarity.
	MetricInnerProduct Metric = "ip"

	// MetricL2 reports squared Euclidean distance between unit vectors.
	MetricL2 Metric = "l2"
)

// IsValid returns true if the metric is recognised.
func (m Metric) IsValid() bool {
	return m == MetricInnerProduct || m == MetricL2
}

// String returns the string representation.
func (m Metric) String() string {
	return string(m)
}

// Similarity converts a raw value reported under this metric into a score
// in [0,1]. For unit vectors d² = 2 - 2·cos, so L2 maps to 1 - d²/2.
// Inner product needs no conversion beyond clamping rounding drift.
func (m Metric) Similarity(raw float64) float64 {
	var s float64
	switch m {
	case MetricL2:
		s = 1 - raw/2
	default:
		s = raw
	}
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// IndexEntry pairs a unit vector with the document it was computed from.
type IndexEntry struct {
	Vector   []float32
	Document Document
}

// IndexStore is a named, persisted collection of vector/document pairs.
// All vectors share Dimension and are unit normalised. A rebuild replaces
// the store wholesale; entries are never patched in place.
type IndexStore struct {
	// Name is the database name, usually the source file stem.
	Name string

	// Dimension is the length of every vector.
	Dimension int

	// Metric is the distance the search index reports.
	Metric Metric

	// Model is the embedding model that produced the vectors.
	Model string

	// BuiltAt is when the store was built.
	BuiltAt time.Time

	// Entries holds the pairs in build order.
	Entries []IndexEntry
}

// Len returns the number of entries.
func (s *IndexStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Validate checks that every vector has the declared dimension.
func (s *IndexStore) Validate() error {
	if s.Name == "" {
		return ErrInvalidInput
	}
	if !s.Metric.IsValid() {
		return ErrInvalidInput
	}
	for _, e := range s.Entries {
		if len(e.Vector) != s.Dimension {
			return ErrDimensionMismatch
		}
	}
	return nil
}
