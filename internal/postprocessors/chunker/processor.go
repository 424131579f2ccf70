// Package chunker splits long text into overlapping windows for embedding.
// It implements the driven.TextSplitter interface.
package chunker

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.TextSplitter = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 20

// boundaries are tried in order when choosing where a window ends.
var boundaries = []string{"\n\n", "\n", " "}

// Processor splits text into windows of at most chunkSize characters,
// cutting at the widest natural boundary inside the window.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Split returns the chunks of text in order. Whitespace-only input yields nil.
// Text that fits in one window is returned as a single trimmed chunk.
func (p *Processor) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= p.chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/(p.chunkSize-p.overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + p.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = p.cut(runes, start, end)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		// Do not begin a window in the middle of whitespace.
		for next < end && unicode.IsSpace(runes[next]) {
			next++
		}
		start = next
	}

	return chunks
}

// cut moves end back to just after the last boundary in runes[start:end].
// The window must keep more than the overlap so that every step advances.
func (p *Processor) cut(runes []rune, start, end int) int {
	window := string(runes[start:end])
	minKeep := p.overlap + 1
	for _, sep := range boundaries {
		i := strings.LastIndex(window, sep)
		if i < 0 {
			continue
		}
		keep := len([]rune(window[:i])) + len([]rune(sep))
		if keep > minKeep {
			return start + keep
		}
	}
	return end
}
