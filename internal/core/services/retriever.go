package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.SearchService = (*Retriever)(nil)

// strictFilterWindow is how many top results are inspected for an
// identifier before the strict filter kicks in.
const strictFilterWindow = 3

// Retriever runs hybrid semantic + exact-match search against index stores.
type Retriever struct {
	catalog    *Catalog
	embedder   driven.EmbeddingService
	queryCache driven.Cache[[]float32]
	results    driven.Cache[[]domain.SearchResult]
	builder    driving.BuildService
	metrics    driven.Metrics
	maxFetch   int
}

// NewRetriever creates a retriever. Both caches are required; pass an
// in-memory cache for process-lifetime memoisation.
func NewRetriever(
	catalog *Catalog,
	embedder driven.EmbeddingService,
	queryCache driven.Cache[[]float32],
	results driven.Cache[[]domain.SearchResult],
) *Retriever {
	return &Retriever{
		catalog:    catalog,
		embedder:   embedder,
		queryCache: queryCache,
		results:    results,
		metrics:    nopMetrics{},
		maxFetch:   domain.DefaultMaxFetch,
	}
}

// SetBuilder enables rebuilding missing stores when a search asks for it.
func (r *Retriever) SetBuilder(b driving.BuildService) {
	r.builder = b
}

// SetMetrics sets the metrics recorder.
func (r *Retriever) SetMetrics(m driven.Metrics) {
	if m != nil {
		r.metrics = m
	}
}

// SetMaxFetch caps the adaptive candidate count.
func (r *Retriever) SetMaxFetch(n int) {
	if n > 0 {
		r.maxFetch = n
	}
}

// ResultKey is the result cache key of a query and normalised options.
func ResultKey(query string, opts domain.SearchOptions) string {
	minScore := "none"
	if opts.MinScore != nil {
		minScore = strconv.FormatFloat(*opts.MinScore, 'g', -1, 64)
	}
	return strings.Join([]string{NormalizeQuery(query), opts.Database, strconv.Itoa(opts.K), minScore}, "|")
}

// Search returns up to opts.K results for query from opts.Database.
func (r *Retriever) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	opts = opts.Normalised()
	key := ResultKey(query, opts)

	if cached, ok := r.results.Get(ctx, key); ok {
		r.metrics.CacheLookup(cacheResults, true)
		logger.Debug("Result cache hit: %q", key)
		return cloneResults(cached), nil
	}
	r.metrics.CacheLookup(cacheResults, false)

	logger.Section("Search Execution")
	logger.Debug("Query: %q, database=%s, k=%d", query, opts.Database, opts.K)

	if strings.TrimSpace(query) == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	start := time.Now()

	ids := ExtractIdentifiers(query)
	kFetch := FetchSize(opts.Database, opts.K, ids.Count(), r.maxFetch)
	logger.Debug("Identifiers: codes=%v numbers=%v assignments=%v raw=%v", ids.CourseCodes, ids.CourseNumbers, ids.AssignmentPatterns, ids.RawNumbers)
	logger.Debug("Fetch size: %d", kFetch)

	loaded, err := r.open(ctx, opts)
	if err != nil {
		return nil, err
	}

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits, err := loaded.Index.Search(vec, kFetch)
	if err != nil {
		return nil, fmt.Errorf("search store %q: %w", opts.Database, err)
	}

	metric := loaded.Index.Metric()
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		score := metric.Similarity(h.Raw)
		if opts.MinScore != nil && score < *opts.MinScore {
			continue
		}
		results = append(results, domain.SearchResult{
			Document: loaded.Store.Entries[h.Position].Document,
			Score:    score,
		})
	}
	logger.Debug("Candidates after score conversion: %d", len(results))

	results = r.strictFilter(opts.Database, results, ids.FilterForms())

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.K {
		results = results[:opts.K]
	}

	r.results.Put(ctx, key, results)
	r.metrics.ObserveSearch(opts.Database, time.Since(start), len(results))
	logger.Info("Search returned %d results in %s", len(results), time.Since(start))

	return cloneResults(results), nil
}

// open loads the store, rebuilding it once when missing and asked to.
func (r *Retriever) open(ctx context.Context, opts domain.SearchOptions) (*LoadedStore, error) {
	loaded, err := r.catalog.Open(ctx, opts.Database)
	if err == nil {
		return loaded, nil
	}
	if !errors.Is(err, domain.ErrNotFound) || !opts.RecreateIfMissing || r.builder == nil {
		return nil, err
	}

	logger.Info("Store %q missing, rebuilding from source", opts.Database)
	if _, berr := r.builder.BuildFromSource(ctx, opts.Database); berr != nil {
		return nil, fmt.Errorf("recreate store %q: %w", opts.Database, berr)
	}
	return r.catalog.Open(ctx, opts.Database)
}

// embedQuery embeds the normalised query through the query cache.
func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	norm := NormalizeQuery(query)
	if vec, ok := r.queryCache.Get(ctx, norm); ok {
		r.metrics.CacheLookup(cacheEmbeddings, true)
		return vec, nil
	}
	r.metrics.CacheLookup(cacheEmbeddings, false)

	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	raw, err := r.embedder.Embed(ctx, norm)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec := domain.Normalize(raw)
	r.queryCache.Put(ctx, norm, vec)
	return vec, nil
}

// strictFilter keeps only results matching an identifier when none of the
// top results do. An empty filtered list falls back to the input.
func (r *Retriever) strictFilter(database string, results []domain.SearchResult, forms []string) []domain.SearchResult {
	if len(forms) == 0 || len(results) == 0 {
		return results
	}

	window := results
	if len(window) > strictFilterWindow {
		window = window[:strictFilterWindow]
	}
	for _, res := range window {
		if matchesAny(res.Document, forms) {
			return results
		}
	}

	filtered := make([]domain.SearchResult, 0, len(results))
	for _, res := range results {
		if matchesAny(res.Document, forms) {
			filtered = append(filtered, res)
		}
	}

	if len(filtered) == 0 {
		logger.Debug("Strict filter matched nothing, keeping semantic ranking")
		r.metrics.StrictFilter(database, true)
		return results
	}
	logger.Debug("Strict filter kept %d of %d results", len(filtered), len(results))
	r.metrics.StrictFilter(database, false)
	return filtered
}

func matchesAny(doc domain.Document, forms []string) bool {
	for _, f := range forms {
		if doc.ContainsFold(f) {
			return true
		}
	}
	return false
}

func cloneResults(in []domain.SearchResult) []domain.SearchResult {
	out := make([]domain.SearchResult, len(in))
	copy(out, in)
	return out
}
