// Package driven declares the ports the core calls out through: sources,
// index storage, vector search, caches, models, config and metrics.
package driven

import "context"

// EmbeddingService turns text into vectors. Rows at build time and
// questions at query time must go through the same model, or their vectors
// are not comparable.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length the model produces.
	Dimensions() int

	// ModelName is recorded in index manifests to detect model changes.
	ModelName() string

	Ping(ctx context.Context) error
	Close() error
}
