package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
)

// --- Mock implementations ---

// wordEmbedder hashes words into buckets, so texts sharing words are close.
type wordEmbedder struct {
	mu       sync.Mutex
	dim      int
	fixed    map[string][]float32
	err      error
	calls    int
	batches  int
	inputs   []string
	truncate bool
}

func newWordEmbedder(dim int) *wordEmbedder {
	return &wordEmbedder{dim: dim, fixed: make(map[string][]float32)}
}

func (e *wordEmbedder) vector(text string) []float32 {
	if v, ok := e.fixed[text]; ok {
		return v
	}
	v := make([]float32, e.dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,:;?!")))
		v[h.Sum32()%uint32(e.dim)]++
	}
	return v
}

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.inputs = append(e.inputs, text)
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *wordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, e.vector(t))
	}
	if e.truncate && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *wordEmbedder) Dimensions() int { return e.dim }
func (e *wordEmbedder) ModelName() string { return "word-hash" }
func (e *wordEmbedder) Ping(_ context.Context) error { return e.err }
func (e *wordEmbedder) Close() error { return nil }

func (e *wordEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// mockLLM returns scripted replies and records what it was sent.
type mockLLM struct {
	reply    string
	err      error
	system   string
	user     string
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	temp     float64
	calls    int
}

func (m *mockLLM) Complete(_ context.Context, system, user string, temperature float64) (string, error) {
	m.calls++
	m.system, m.user, m.temp = system, user, temperature
	return m.reply, m.err
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	m.opts = opts
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return m.err }
func (m *mockLLM) Close() error { return nil }

// mockSource serves records from memory.
type mockSource struct {
	tables map[string][]domain.Record
	err    error
}

func (s *mockSource) Read(_ context.Context, table string) ([]domain.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	recs, ok := s.tables[table]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return recs, nil
}

func (s *mockSource) Exists(table string) bool {
	_, ok := s.tables[table]
	return ok
}

func (s *mockSource) Location(table string) string {
	return "mem://" + table + ".csv"
}

// wholeSplitter returns the text as a single chunk.
type wholeSplitter struct{}

func (wholeSplitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []string{text}
}

// recordingMetrics counts observations.
type recordingMetrics struct {
	mu        sync.Mutex
	hits      map[string]int
	misses    map[string]int
	searches  int
	strict    []bool
	builds    int
	buildErrs int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{hits: make(map[string]int), misses: make(map[string]int)}
}

func (m *recordingMetrics) CacheLookup(cache string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits[cache]++
	} else {
		m.misses[cache]++
	}
}

func (m *recordingMetrics) ObserveSearch(string, time.Duration, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
}

func (m *recordingMetrics) StrictFilter(_ string, fellBack bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strict = append(m.strict, fellBack)
}

func (m *recordingMetrics) ObserveBuild(_ string, _ int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds++
	if err != nil {
		m.buildErrs++
	}
}

// spyIndex wraps a vector index and records requested k values.
type spyIndex struct {
	driven.VectorIndex
	ks []int
}

func (s *spyIndex) Search(query []float32, k int) ([]driven.VectorHit, error) {
	s.ks = append(s.ks, k)
	return s.VectorIndex.Search(query, k)
}

// mockPlanner returns a fixed plan.
type mockPlanner struct {
	plan  domain.QueryPlan
	query string
}

func (p *mockPlanner) Plan(_ context.Context, query string) domain.QueryPlan {
	p.query = query
	return p.plan
}

// mockSearch records the options it was called with.
type mockSearch struct {
	results []domain.SearchResult
	err     error
	opts    domain.SearchOptions
}

func (s *mockSearch) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	s.opts = opts
	return s.results, s.err
}

// mockSynthesizer echoes the number of results it saw.
type mockSynthesizer struct {
	history []domain.ChatTurn
	results []domain.SearchResult
}

func (s *mockSynthesizer) Synthesize(_ context.Context, _ string, results []domain.SearchResult, history []domain.ChatTurn) string {
	s.results = results
	s.history = history
	return "answer"
}

// mockBuilder records rebuild requests and delegates to an IndexBuilder.
type mockBuilder struct {
	driving.BuildService
	names []string
	err   error
}

func (b *mockBuilder) BuildFromSource(ctx context.Context, name string) (*domain.IndexStore, error) {
	b.names = append(b.names, name)
	if b.err != nil {
		return nil, b.err
	}
	return b.BuildService.BuildFromSource(ctx, name)
}

// record builds a record from alternating column/value pairs.
func record(table string, row int, pairs ...string) domain.Record {
	rec := domain.Record{Table: table, RowID: row, Values: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Columns = append(rec.Columns, pairs[i])
		rec.Values[pairs[i]] = pairs[i+1]
	}
	return rec
}
