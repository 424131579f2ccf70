package driven

import "context"

// Cache memoises values by string key.
// Implementations must be safe for concurrent use. Writing the same key
// twice with equal values is harmless.
type Cache[V any] interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) (V, bool)

	// Put stores a value under key.
	Put(ctx context.Context, key string, value V)
}
