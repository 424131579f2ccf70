package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Ensure IndexRepository implements the interface.
var _ driven.IndexRepository = (*IndexRepository)(nil)

// IndexRepository is an in-memory implementation of driven.IndexRepository.
// Stores are deep-copied on Save and Load so callers cannot alias them.
type IndexRepository struct {
	mu     sync.RWMutex
	stores map[string]*domain.IndexStore
	saves  int
}

// NewIndexRepository creates an empty repository.
func NewIndexRepository() *IndexRepository {
	return &IndexRepository{
		stores: make(map[string]*domain.IndexStore),
	}
}

// Save stores a copy of store, replacing any previous one.
func (r *IndexRepository) Save(_ context.Context, store *domain.IndexStore) error {
	if store == nil {
		return fmt.Errorf("save: nil store: %w", domain.ErrInvalidInput)
	}
	if err := store.Validate(); err != nil {
		return fmt.Errorf("save store %q: %w", store.Name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[store.Name] = cloneStore(store)
	r.saves++
	return nil
}

// Load returns a copy of the named store.
func (r *IndexRepository) Load(_ context.Context, name string) (*domain.IndexStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneStore(store), nil
}

// Exists reports whether the store has been saved.
func (r *IndexRepository) Exists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.stores[name]
	return ok, nil
}

// Delete removes a store.
func (r *IndexRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, name)
	return nil
}

// List returns store names in sorted order.
func (r *IndexRepository) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Saves returns how many successful saves happened. Useful for testing.
func (r *IndexRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

func cloneStore(s *domain.IndexStore) *domain.IndexStore {
	out := *s
	out.Entries = make([]domain.IndexEntry, len(s.Entries))
	for i, e := range s.Entries {
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		meta := make(map[string]string, len(e.Document.Metadata))
		for k, v := range e.Document.Metadata {
			meta[k] = v
		}
		out.Entries[i] = domain.IndexEntry{
			Vector: vec,
			Document: domain.Document{
				ID:       e.Document.ID,
				Content:  e.Document.Content,
				Metadata: meta,
			},
		}
	}
	return &out
}
