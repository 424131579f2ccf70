// Package csv reads exported LMS tables from a directory of CSV files.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Extension is the file extension of every exported table.
const Extension = ".csv"

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Source reads <dir>/<table>.csv. The first row is the header.
type Source struct {
	dir string
}

// New creates a source rooted at dir.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the data directory.
func (s *Source) Dir() string {
	return s.dir
}

// Location returns the file path of a table.
func (s *Source) Location(table string) string {
	return filepath.Join(s.dir, table+Extension)
}

// Exists reports whether the table file is present.
func (s *Source) Exists(table string) bool {
	info, err := os.Stat(s.Location(table))
	return err == nil && !info.IsDir()
}

// Read parses every row of the table. Rows shorter than the header are
// padded with empty cells; extra cells are dropped.
func (s *Source) Read(ctx context.Context, table string) ([]domain.Record, error) {
	if table == "" || strings.ContainsAny(table, `/\`) {
		return nil, fmt.Errorf("read table %q: %w", table, domain.ErrInvalidInput)
	}

	f, err := os.Open(s.Location(table))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read table %q: %w", table, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open table %q: %w", table, err)
	}
	defer f.Close()

	return parse(ctx, table, f)
}

func parse(ctx context.Context, table string, r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Record{}, nil
		}
		return nil, fmt.Errorf("read header of %q: %w", table, err)
	}
	columns := make([]string, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		columns[i] = col
	}

	records := []domain.Record{}
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %q row %d: %w", table, row, err)
		}

		values := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				values[col] = cells[i]
			} else {
				values[col] = ""
			}
		}
		records = append(records, domain.Record{
			Table:   table,
			RowID:   row,
			Columns: columns,
			Values:  values,
		})
	}

	return records, nil
}
