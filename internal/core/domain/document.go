package domain

import "strings"

// Record is a single row read from an exported table.
// Columns preserves the header order; Values is keyed by column name.
type Record struct {
	// Table is the source table name (file stem, e.g. "grades").
	Table string

	// RowID is the zero-based row position within the source.
	RowID int

	// Columns lists column names in source order.
	Columns []string

	// Values maps column name to cell value.
	Values map[string]string
}

// Get returns the value of a column, or empty string when absent.
func (r Record) Get(column string) string {
	if r.Values == nil {
		return ""
	}
	return r.Values[column]
}

// Text renders the record as "column: value" lines in column order.
// Empty cells are kept so the column set stays visible to the model.
func (r Record) Text() string {
	var b strings.Builder
	for i, col := range r.Columns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(col)
		b.WriteString(": ")
		b.WriteString(r.Values[col])
	}
	return b.String()
}

// Metadata keys attached to every built document.
const (
	MetaSource = "source"
	MetaTable  = "table"
	MetaRow    = "row"
	MetaChunk  = "chunk"
)

// Document is a retrievable unit of text.
// Documents are created by the index builder and never mutated afterwards.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// Content is the text that was embedded.
	Content string `json:"content"`

	// Metadata carries provenance (source file, table, row, chunk ordinal).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ContainsFold reports whether the content or any metadata value contains
// needle, ignoring case. needle must already be lower-cased.
func (d Document) ContainsFold(needle string) bool {
	if needle == "" {
		return false
	}
	if strings.Contains(strings.ToLower(d.Content), needle) {
		return true
	}
	for _, v := range d.Metadata {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
