package driven

import (
	"context"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// RecordSource reads exported table rows.
type RecordSource interface {
	// Read returns all rows of a table. Returns domain.ErrNotFound when
	// the table has not been exported.
	Read(ctx context.Context, table string) ([]domain.Record, error)

	// Exists reports whether the table has been exported.
	Exists(table string) bool

	// Location returns where the table is read from, for logs and metadata.
	Location(table string) string
}

// SourceWatcher notifies about changed exported tables.
type SourceWatcher interface {
	// Watch blocks until ctx is done, calling onChange with the table name
	// of every changed source file. Bursts of writes produce one call.
	Watch(ctx context.Context, onChange func(table string)) error

	// Close releases resources.
	Close() error
}
