package driven

import "time"

// Metrics records retrieval and build activity.
type Metrics interface {
	// CacheLookup records a hit or miss on the named cache.
	CacheLookup(cache string, hit bool)

	// ObserveSearch records the latency and result count of one search.
	ObserveSearch(database string, elapsed time.Duration, results int)

	// StrictFilter records a strict filter activation and whether it fell back.
	StrictFilter(database string, fellBack bool)

	// ObserveBuild records a finished build.
	ObserveBuild(database string, documents int, elapsed time.Duration, err error)
}
