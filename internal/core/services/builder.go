package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// Ensure IndexBuilder implements the interface.
var _ driving.BuildService = (*IndexBuilder)(nil)

// DefaultEmbedBatchSize is the number of chunks sent per embedding request.
const DefaultEmbedBatchSize = 32

// maxMetadataValue bounds the length of a column value copied into metadata.
// Longer values are free text and only live in the chunk content.
const maxMetadataValue = 256

// Sidecar join: summary rows reference full text rows by text_id.
const (
	columnTextID   = "text_id"
	columnID       = "id"
	columnFullText = "full_text"
)

// documentNamespace seeds deterministic document IDs.
var documentNamespace = uuid.MustParse("8f0b1c9e-4a53-4c4e-9a43-5f1d3f6c2a10")

// IndexBuilder turns records into persisted index stores.
type IndexBuilder struct {
	embedder  driven.EmbeddingService
	repo      driven.IndexRepository
	source    driven.RecordSource
	splitter  driven.TextSplitter
	metrics   driven.Metrics
	metric    domain.Metric
	batchSize int
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIndexBuilder creates a builder. source may be nil when only Build is used.
func NewIndexBuilder(
	embedder driven.EmbeddingService,
	repo driven.IndexRepository,
	source driven.RecordSource,
	splitter driven.TextSplitter,
) *IndexBuilder {
	return &IndexBuilder{
		embedder:  embedder,
		repo:      repo,
		source:    source,
		splitter:  splitter,
		metrics:   nopMetrics{},
		metric:    domain.MetricInnerProduct,
		batchSize: DefaultEmbedBatchSize,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// SetMetrics sets the metrics recorder.
func (b *IndexBuilder) SetMetrics(m driven.Metrics) {
	if m != nil {
		b.metrics = m
	}
}

// SetMetric selects the raw metric recorded in built stores.
func (b *IndexBuilder) SetMetric(m domain.Metric) {
	if m.IsValid() {
		b.metric = m
	}
}

// SetBatchSize sets the number of chunks per embedding request.
func (b *IndexBuilder) SetBatchSize(n int) {
	if n > 0 {
		b.batchSize = n
	}
}

// lockFor returns the build lock of a store name.
func (b *IndexBuilder) lockFor(name string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[name]
	if !ok {
		l = &sync.Mutex{}
		b.locks[name] = l
	}
	return l
}

// Build embeds records and persists them as store name.
// Builds of the same name run one at a time; the last one wins.
func (b *IndexBuilder) Build(ctx context.Context, records []domain.Record, name string) (*domain.IndexStore, error) {
	if name == "" {
		return nil, fmt.Errorf("build: empty store name: %w", domain.ErrInvalidInput)
	}
	if b.embedder == nil {
		return nil, fmt.Errorf("build %q: %w", name, domain.ErrEmbeddingUnavailable)
	}

	lock := b.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Index Build: " + name)
	start := time.Now()

	store, err := b.build(ctx, records, name)
	if err != nil {
		b.metrics.ObserveBuild(name, 0, time.Since(start), err)
		logger.Warn("Build of %q failed: %v", name, err)
		return nil, err
	}

	if err := b.repo.Save(ctx, store); err != nil {
		err = fmt.Errorf("save store %q: %w", name, err)
		b.metrics.ObserveBuild(name, 0, time.Since(start), err)
		return nil, err
	}

	b.metrics.ObserveBuild(name, store.Len(), time.Since(start), nil)
	logger.Info("Built %q: %d records, %d documents in %s", name, len(records), store.Len(), time.Since(start))
	return store, nil
}

func (b *IndexBuilder) build(ctx context.Context, records []domain.Record, name string) (*domain.IndexStore, error) {
	docs := b.documents(records)
	logger.Debug("Records: %d, documents: %d", len(records), len(docs))

	store := &domain.IndexStore{
		Name:      name,
		Dimension: b.embedder.Dimensions(),
		Metric:    b.metric,
		Model:     b.embedder.ModelName(),
		BuiltAt:   b.now().UTC(),
		Entries:   make([]domain.IndexEntry, 0, len(docs)),
	}

	for offset := 0; offset < len(docs); offset += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build %q: %w", name, err)
		}
		end := offset + b.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[offset:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Content
		}
		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed %q documents %d-%d: %w", name, offset, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embed %q: got %d vectors for %d documents: %w",
				name, len(vectors), len(batch), domain.ErrUpstream)
		}

		for i, v := range vectors {
			if len(store.Entries) == 0 {
				// The first vector fixes the dimension; providers may report 0 before the first call.
				store.Dimension = len(v)
			}
			if len(v) != store.Dimension {
				return nil, fmt.Errorf("embed %q document %d: %d dimensions, want %d: %w",
					name, offset+i, len(v), store.Dimension, domain.ErrDimensionMismatch)
			}
			store.Entries = append(store.Entries, domain.IndexEntry{
				Vector:   domain.Normalize(v),
				Document: batch[i],
			})
		}
		logger.Debug("Embedded %d/%d documents", len(store.Entries), len(docs))
	}

	return store, nil
}

// documents renders and chunks records. Each chunk becomes one document
// carrying the record's short column values as metadata.
func (b *IndexBuilder) documents(records []domain.Record) []domain.Document {
	var docs []domain.Document
	for _, rec := range records {
		chunks := b.splitter.Split(rec.Text())
		for i, chunk := range chunks {
			meta := map[string]string{
				domain.MetaSource: rec.Table + ".csv",
				domain.MetaTable:  rec.Table,
				domain.MetaRow:    strconv.Itoa(rec.RowID),
				domain.MetaChunk:  strconv.Itoa(i),
			}
			for _, col := range rec.Columns {
				if v := rec.Values[col]; v != "" && len(v) <= maxMetadataValue {
					if _, reserved := meta[col]; !reserved {
						meta[col] = v
					}
				}
			}
			id := uuid.NewSHA1(documentNamespace, []byte(rec.Table+"/"+strconv.Itoa(rec.RowID)+"/"+strconv.Itoa(i)))
			docs = append(docs, domain.Document{
				ID:       id.String(),
				Content:  chunk,
				Metadata: meta,
			})
		}
	}
	return docs
}

// BuildFromSource reads name from the record source and builds it.
// Summary rows are joined with their full text when it has been exported.
func (b *IndexBuilder) BuildFromSource(ctx context.Context, name string) (*domain.IndexStore, error) {
	if b.source == nil {
		return nil, fmt.Errorf("build %q: no record source: %w", name, domain.ErrInvalidInput)
	}

	records, err := b.source.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read source %q: %w", name, err)
	}

	if domain.Table(name) == domain.TableCourseContentSummary && b.source.Exists(domain.TableCourseContent.String()) {
		records, err = b.joinFullText(ctx, records)
		if err != nil {
			return nil, err
		}
	}

	return b.Build(ctx, records, name)
}

// joinFullText appends a full_text column to rows whose text_id resolves.
func (b *IndexBuilder) joinFullText(ctx context.Context, rows []domain.Record) ([]domain.Record, error) {
	texts, err := b.source.Read(ctx, domain.TableCourseContent.String())
	if err != nil {
		return nil, fmt.Errorf("read source %q: %w", domain.TableCourseContent, err)
	}
	byID := make(map[string]string, len(texts))
	for _, t := range texts {
		byID[t.Get(columnID)] = t.Get(columnFullText)
	}

	joined := make([]domain.Record, len(rows))
	matched := 0
	for i, row := range rows {
		text, ok := byID[row.Get(columnTextID)]
		if !ok || row.Get(columnTextID) == "" || text == "" {
			joined[i] = row
			continue
		}
		values := make(map[string]string, len(row.Values)+1)
		for k, v := range row.Values {
			values[k] = v
		}
		values[columnFullText] = text
		joined[i] = domain.Record{
			Table:   row.Table,
			RowID:   row.RowID,
			Columns: append(append([]string(nil), row.Columns...), columnFullText),
			Values:  values,
		}
		matched++
	}
	logger.Debug("Joined full text for %d of %d rows", matched, len(rows))
	return joined, nil
}

// BuildAll builds every known table that has been exported.
// Missing tables are skipped. Failures are reported per table and joined.
func (b *IndexBuilder) BuildAll(ctx context.Context) ([]driving.BuildReport, error) {
	if b.source == nil {
		return nil, fmt.Errorf("build all: no record source: %w", domain.ErrInvalidInput)
	}

	var (
		reports []driving.BuildReport
		errs    []error
	)
	for _, table := range domain.AllTables() {
		name := table.String()
		if !b.source.Exists(name) {
			logger.Warn("Skipping missing source: %s", b.source.Location(name))
			reports = append(reports, driving.BuildReport{Name: name, Skipped: true})
			continue
		}
		store, err := b.BuildFromSource(ctx, name)
		if err != nil {
			reports = append(reports, driving.BuildReport{Name: name, Err: err})
			errs = append(errs, err)
			continue
		}
		reports = append(reports, driving.BuildReport{Name: name, Documents: store.Len()})
	}
	return reports, errors.Join(errs...)
}
