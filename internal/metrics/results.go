package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Result set Prometheus metrics of the server process.
var (
	CacheTotal       = NewCacheTotal()
	FetchDuration    = NewFetchDuration()
	FetchErrorsTotal = NewFetchErrorsTotal()

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pollsearch",
			Name:      "sessions_active",
			Help:      "Widget sessions currently held by the server",
		},
	)
)

// NewCacheTotal creates the cache hit/miss counter.
func NewCacheTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollsearch",
			Name:      "cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
}

// NewFetchDuration creates the record source latency histogram.
func NewFetchDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pollsearch",
			Name:      "fetch_duration_seconds",
			Help:      "Record source fetch duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)
}

// NewFetchErrorsTotal creates the record source error counter.
func NewFetchErrorsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pollsearch",
			Name:      "fetch_errors_total",
			Help:      "Total record source fetch errors",
		},
		[]string{"source"},
	)
}

var resultMetricsRegistered sync.Once

// RegisterResultMetrics registers the result set collectors on the default registry.
func RegisterResultMetrics() {
	resultMetricsRegistered.Do(func() {
		prometheus.MustRegister(CacheTotal)
		prometheus.MustRegister(FetchDuration)
		prometheus.MustRegister(FetchErrorsTotal)
		prometheus.MustRegister(SessionsActive)
	})
}

// RegisterOrExisting registers c on reg. When an equal collector is already
// registered there, the existing one is returned so that every client of a
// shared registry reports to the same series.
func RegisterOrExisting[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}
