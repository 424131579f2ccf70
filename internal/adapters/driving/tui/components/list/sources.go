// Package list provides list display components for the chat TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/canvai/internal/core/domain"
)

// SourceList shows the documents an answer was grounded on.
type SourceList struct {
	results []domain.SearchResult
	styles  *styles.Styles
	width   int
	height  int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders as many sources as fit, best first.
func (l *SourceList) View() string {
	if len(l.results) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	header := l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.results)))
	lines := []string{header}

	// Each source takes two lines under the header.
	visible := (l.height - 1) / 2
	if visible < 1 {
		visible = 1
	}
	if visible > len(l.results) {
		visible = len(l.results)
	}

	for i := 0; i < visible; i++ {
		lines = append(lines, l.renderSource(&l.results[i]))
	}
	if hidden := len(l.results) - visible; hidden > 0 {
		lines = append(lines, l.styles.Muted.Render(fmt.Sprintf("  … %d more", hidden)))
	}

	return strings.Join(lines, "\n")
}

// renderSource formats one result as a label line and a preview line.
func (l *SourceList) renderSource(result *domain.SearchResult) string {
	label := Label(result.Document)
	score := fmt.Sprintf("%.2f", result.Score)

	maxLabel := l.width - 12
	if maxLabel < 10 {
		maxLabel = 10
	}
	label = truncate(label, maxLabel)

	title := l.styles.Normal.Render(fmt.Sprintf("  %-*s  ", maxLabel, label)) + l.styles.Muted.Render(score)

	preview := strings.Join(strings.Fields(result.Document.Content), " ")
	maxPreview := l.width - 6
	if maxPreview < 20 {
		maxPreview = 20
	}

	return title + "\n" + l.styles.Source.Render("  "+truncate(preview, maxPreview))
}

// Label names a document by table and row when known, else by id.
func Label(doc domain.Document) string {
	table := doc.Metadata[domain.MetaTable]
	row := doc.Metadata[domain.MetaRow]
	switch {
	case table != "" && row != "":
		return table + " #" + row
	case table != "":
		return table + " " + doc.ID
	default:
		return doc.ID
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetResults replaces the listed sources.
func (l *SourceList) SetResults(results []domain.SearchResult) {
	l.results = results
}

// Results returns the listed sources.
func (l *SourceList) Results() []domain.SearchResult {
	return l.results
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.results)
}

// IsEmpty returns whether the list is empty.
func (l *SourceList) IsEmpty() bool {
	return len(l.results) == 0
}
