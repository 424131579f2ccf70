package mcp

import (
	"context"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
)

// StoreReader lists and reads persisted index stores.
type StoreReader interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*domain.IndexStore, error)
}

// Ports aggregates all interfaces required by the MCP server.
type Ports struct {
	// Search provides hybrid retrieval. Required.
	Search driving.SearchService

	// Planner turns questions into plans. The plan tool is omitted when nil.
	Planner driving.PlannerService

	// Assistant answers questions. The ask tool is omitted when nil.
	Assistant driving.AssistantService

	// Stores backs the store resources. Resources list nothing when nil.
	Stores StoreReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
