package driving

import (
	"context"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// BuildService creates index stores from exported records.
type BuildService interface {
	// Build embeds records into a store named name and persists it,
	// replacing any previous store. On error nothing is persisted.
	Build(ctx context.Context, records []domain.Record, name string) (*domain.IndexStore, error)

	// BuildFromSource reads the records for name from the record source and builds.
	BuildFromSource(ctx context.Context, name string) (*domain.IndexStore, error)

	// BuildAll builds every known table that has been exported, skipping the rest.
	BuildAll(ctx context.Context) ([]BuildReport, error)
}

// BuildReport summarises one store built by BuildAll.
type BuildReport struct {
	Name      string
	Documents int
	Skipped   bool
	Err       error
}

// RefreshService keeps stores in step with their exported tables.
type RefreshService interface {
	// Run blocks until ctx is done, rebuilding each store whose source
	// changes. report, when non-nil, receives one report per rebuild.
	Run(ctx context.Context, report func(BuildReport)) error
}
