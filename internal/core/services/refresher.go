package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// Ensure Refresher implements the interface.
var _ driving.RefreshService = (*Refresher)(nil)

// storeForgetter drops a loaded store so the next search reloads it.
type storeForgetter interface {
	Forget(name string)
}

// Refresher rebuilds index stores when their exported tables change.
// It is a pure core service; change detection comes from the watcher.
type Refresher struct {
	watcher driven.SourceWatcher
	builder driving.BuildService
	catalog storeForgetter

	mu      sync.Mutex
	running bool
}

// NewRefresher creates a refresher. catalog may be nil when no process
// keeps stores loaded.
func NewRefresher(watcher driven.SourceWatcher, builder driving.BuildService, catalog storeForgetter) *Refresher {
	return &Refresher{
		watcher: watcher,
		builder: builder,
		catalog: catalog,
	}
}

// Run blocks until ctx is done. Calling Run while it is already running
// returns immediately.
func (r *Refresher) Run(ctx context.Context, report func(driving.BuildReport)) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	err := r.watcher.Watch(ctx, func(table string) {
		for _, rep := range r.refresh(ctx, table) {
			if report != nil {
				report(rep)
			}
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// refresh rebuilds every store fed by table.
func (r *Refresher) refresh(ctx context.Context, table string) []driving.BuildReport {
	names := affectedStores(table)
	if len(names) == 0 {
		logger.Debug("refresher: ignoring change to %s", table)
		return nil
	}

	reports := make([]driving.BuildReport, 0, len(names))
	for _, name := range names {
		start := time.Now()
		store, err := r.builder.BuildFromSource(ctx, name)

		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Removed or renamed away; the previous store stays.
			logger.Info("refresher: %s no longer exported, keeping previous store", name)
			reports = append(reports, driving.BuildReport{Name: name, Skipped: true})
		case err != nil:
			logger.Warn("refresher: rebuilding %s: %v", name, err)
			reports = append(reports, driving.BuildReport{Name: name, Err: err})
		default:
			if r.catalog != nil {
				r.catalog.Forget(name)
			}
			logger.Info("refresher: rebuilt %s (%d documents) in %s", name, store.Len(), time.Since(start).Round(time.Millisecond))
			reports = append(reports, driving.BuildReport{Name: name, Documents: store.Len()})
		}
	}
	return reports
}

// affectedStores maps a changed table to the stores built from it.
// Full texts also feed the summary store through the text_id join.
func affectedStores(table string) []string {
	t := domain.Table(table)
	if !t.IsValid() {
		return nil
	}
	if t == domain.TableCourseContent {
		return []string{domain.TableCourseContent.String(), domain.TableCourseContentSummary.String()}
	}
	return []string{t.String()}
}
