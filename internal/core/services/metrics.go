package services

import (
	"time"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Cache names reported to metrics.
const (
	cacheResults    = "results"
	cacheEmbeddings = "embeddings"
	cacheStores     = "stores"
)

// nopMetrics discards all observations.
type nopMetrics struct{}

var _ driven.Metrics = nopMetrics{}

func (nopMetrics) CacheLookup(string, bool) {}
func (nopMetrics) ObserveSearch(string, time.Duration, int) {}
func (nopMetrics) StrictFilter(string, bool) {}
func (nopMetrics) ObserveBuild(string, int, time.Duration, error) {}
