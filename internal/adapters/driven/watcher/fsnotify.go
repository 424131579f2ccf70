// Package watcher notifies about changed exported tables using fsnotify.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/logger"
)

// DefaultDebounce is how long a table must be quiet before onChange fires.
const DefaultDebounce = 2 * time.Second

// Ensure Watcher implements the interface.
var _ driven.SourceWatcher = (*Watcher)(nil)

// Watcher watches a data directory for created or written CSV files.
type Watcher struct {
	dir       string
	extension string
	debounce  time.Duration
	watcher   *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over dir. Files other than *.extension are ignored.
// A debounce of zero uses DefaultDebounce.
func New(dir, extension string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		dir:       dir,
		extension: extension,
		debounce:  debounce,
		watcher:   w,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Watch blocks until ctx is done. Each burst of writes to a table file
// results in one onChange call with the table name.
func (w *Watcher) Watch(ctx context.Context, onChange func(table string)) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			table, ok := w.tableOf(event.Name)
			if !ok {
				continue
			}
			logger.Debug("watcher: %s %s", event.Op, event.Name)
			w.schedule(ctx, table, onChange)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	w.stopTimers()
	return w.watcher.Close()
}

func (w *Watcher) tableOf(path string) (string, bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != w.extension || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, w.extension), true
}

// schedule restarts the table's quiet-period timer.
func (w *Watcher) schedule(ctx context.Context, table string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[table]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.timers[table] != timer {
			// Superseded by a later event that restarted the timer.
			w.mu.Unlock()
			return
		}
		delete(w.timers, table)
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		onChange(table)
	})
	w.timers[table] = timer
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for table, t := range w.timers {
		t.Stop()
		delete(w.timers, table)
	}
}
