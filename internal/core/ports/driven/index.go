package driven

import (
	"context"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// IndexRepository persists named index stores.
// Save replaces any previous store of the same name atomically: readers see
// either the old store or the new one, never a mix.
type IndexRepository interface {
	// Save writes the store, overwriting an existing one with the same name.
	Save(ctx context.Context, store *domain.IndexStore) error

	// Load reads a store. Returns domain.ErrNotFound if it was never built.
	Load(ctx context.Context, name string) (*domain.IndexStore, error)

	// Exists reports whether a store has been built.
	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes a store. Deleting a missing store is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all persisted stores.
	List(ctx context.Context) ([]string, error)
}
