package resultcache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// DefaultFetchTimeout bounds a shared fetch that no caller can cancel.
const DefaultFetchTimeout = 30 * time.Second

// Source loads the full record set of a scope.
type Source interface {
	Fetch(ctx context.Context, scope string) ([]record.Record, error)
}

// Metrics bundles the collectors the cache reports to. Nil fields are skipped.
type Metrics struct {
	CacheTotal    *prometheus.CounterVec   // label "result": "hit" / "miss"
	FetchDuration *prometheus.HistogramVec // label "source"
	FetchErrors   *prometheus.CounterVec   // label "source"
}

// Cache holds each scope's records after the first successful fetch.
// Entries never expire; failed fetches are not stored.
type Cache struct {
	source     Source
	sourceName string
	metrics    Metrics
	logger     *zap.Logger

	fetchTimeout time.Duration

	mu      sync.RWMutex
	entries map[string][]record.Record
	group   singleflight.Group
}

// New creates a fetch-once cache in front of source.
// sourceName labels the fetch metrics ("http", "redis", "sqlite", "file").
func New(source Source, sourceName string, m Metrics, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		source:       source,
		sourceName:   sourceName,
		metrics:      m,
		logger:       logger,
		fetchTimeout: DefaultFetchTimeout,
		entries:      make(map[string][]record.Record),
	}
}

// Get returns the records of scope, fetching them on first use.
// Concurrent first requests for the same scope share one fetch.
// The returned slice is shared: callers must copy before reordering.
func (c *Cache) Get(ctx context.Context, scope string) ([]record.Record, error) {
	if recs, ok := c.Peek(scope); ok {
		c.incCache("hit")
		return recs, nil
	}
	c.incCache("miss")

	// The shared fetch outlives any single caller: a cancelled caller stops
	// waiting, the others still get the result.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(scope, func() (any, error) {
		if recs, ok := c.Peek(scope); ok {
			return recs, nil
		}
		fctx, cancel := context.WithTimeout(fetchCtx, c.fetchTimeout)
		defer cancel()
		return c.fetch(fctx, scope)
	})

	select {
	case <-ctx.Done():
		return nil, domain.NewFetchError(scope, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("Coalesced result fetch", zap.String("scope", scope))
		}
		return res.Val.([]record.Record), nil //nolint:forcetypeassert // group only stores []record.Record
	}
}

// WithFetchTimeout bounds each source fetch. Non-positive values keep the default.
func (c *Cache) WithFetchTimeout(d time.Duration) *Cache {
	if d > 0 {
		c.fetchTimeout = d
	}
	return c
}

// Peek returns cached records without fetching.
func (c *Cache) Peek(scope string) ([]record.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	recs, ok := c.entries[scope]
	return recs, ok
}

// Len returns the number of cached scopes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) fetch(ctx context.Context, scope string) ([]record.Record, error) {
	start := time.Now()
	recs, err := c.source.Fetch(ctx, scope)
	if c.metrics.FetchDuration != nil {
		c.metrics.FetchDuration.WithLabelValues(c.sourceName).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics.FetchErrors != nil {
			c.metrics.FetchErrors.WithLabelValues(c.sourceName).Inc()
		}
		return nil, domain.NewFetchError(scope, err)
	}
	if recs == nil {
		recs = []record.Record{}
	}

	c.mu.Lock()
	c.entries[scope] = recs
	c.mu.Unlock()

	c.logger.Debug("Cached result set",
		zap.String("scope", scope),
		zap.String("source", c.sourceName),
		zap.Int("records", len(recs)),
		zap.Duration("took", time.Since(start)),
	)
	return recs, nil
}

func (c *Cache) incCache(result string) {
	if c.metrics.CacheTotal != nil {
		c.metrics.CacheTotal.WithLabelValues(result).Inc()
	}
}
