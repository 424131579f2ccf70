// Package metrics records retrieval and build activity as Prometheus series.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/canvai/internal/core/ports/driven"
)

// Namespace prefixes every series.
const Namespace = "canvai"

// Ensure Prometheus implements the interface.
var _ driven.Metrics = (*Prometheus)(nil)

// Prometheus implements driven.Metrics on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	cacheLookups   *prometheus.CounterVec
	searchLatency  *prometheus.HistogramVec
	searchResults  *prometheus.HistogramVec
	strictFilters  *prometheus.CounterVec
	builds         *prometheus.CounterVec
	buildDocuments *prometheus.CounterVec
	buildLatency   *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and outcome",
		}, []string{"cache", "outcome"}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_latency_ms",
			Help:      "Latency of hybrid searches in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"database"}),
		searchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		}, []string{"database"}),
		strictFilters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "strict_filter_total",
			Help:      "Strict identifier filter activations by outcome",
		}, []string{"database", "outcome"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "builds_total",
			Help:      "Index builds by database and status",
		}, []string{"database", "status"}),
		buildDocuments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "build_documents_total",
			Help:      "Documents embedded by successful builds",
		}, []string{"database"}),
		buildLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of index builds in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"database"}),
	}

	p.registry.MustRegister(p.Collectors()...)
	return p
}

// Collectors exposes all collectors for registration elsewhere.
func (p *Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.cacheLookups, p.searchLatency, p.searchResults,
		p.strictFilters, p.builds, p.buildDocuments, p.buildLatency,
	}
}

// Registry returns the registry the collectors are registered with.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// CacheLookup records a hit or miss on the named cache.
func (p *Prometheus) CacheLookup(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	p.cacheLookups.WithLabelValues(cache, outcome).Inc()
}

// ObserveSearch records latency and result count for one search.
func (p *Prometheus) ObserveSearch(database string, elapsed time.Duration, results int) {
	p.searchLatency.WithLabelValues(database).Observe(float64(elapsed.Milliseconds()))
	p.searchResults.WithLabelValues(database).Observe(float64(results))
}

// StrictFilter records a strict filter activation.
func (p *Prometheus) StrictFilter(database string, fellBack bool) {
	outcome := "matched"
	if fellBack {
		outcome = "fallback"
	}
	p.strictFilters.WithLabelValues(database, outcome).Inc()
}

// ObserveBuild records a finished build. Failed builds add no documents.
func (p *Prometheus) ObserveBuild(database string, documents int, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.builds.WithLabelValues(database, status).Inc()
	p.buildLatency.WithLabelValues(database).Observe(elapsed.Seconds())
	if err == nil {
		p.buildDocuments.WithLabelValues(database).Add(float64(documents))
	}
}
