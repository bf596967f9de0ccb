package pollsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pollsearch/internal/db"
	dbRedis "github.com/kailas-cloud/pollsearch/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/pollsearch/internal/db/sqlite"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/order"
	"github.com/kailas-cloud/pollsearch/internal/metrics"
	recordrepo "github.com/kailas-cloud/pollsearch/internal/repository/record"
	"github.com/kailas-cloud/pollsearch/internal/repository/resultcache"
	"github.com/kailas-cloud/pollsearch/internal/transport/pollws"
	"github.com/kailas-cloud/pollsearch/internal/usecase/resultset"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the pollsearch SDK entry point.
// It owns one fetch-once cache shared by every session it creates.
type Client struct {
	store  db.Store
	repo   *recordrepo.Repo
	cache  *resultcache.Cache
	proc   *resultset.Processor
	pinger db.Pinger
	logger *zap.Logger
}

// New creates a pollsearch Client and connects to the record source.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, errors.New(
			"pollsearch: record source required (use WithRedis, WithValkey, WithSQLite, WithFixtures, WithPollService or WithSource)",
		)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	presets, def, err := sortOptions(cfg)
	if err != nil {
		return nil, err
	}
	m, err := cacheMetrics(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{logger: cfg.logger}
	source, err := c.connect(cfg)
	if err != nil {
		return nil, err
	}

	c.cache = resultcache.New(source, cfg.driver, m, cfg.logger).WithFetchTimeout(cfg.fetchTimeout)
	c.proc = resultset.New(c.cache, resultset.Config{
		PageSize:            cfg.pageSize,
		MaxPaginationLinks:  cfg.maxLinks,
		SearchFields:        cfg.searchFields,
		DefaultSort:         def,
		Presets:             presets,
		PlaylistURLTemplate: cfg.playlistURLTemplate,
		Scopes:              cfg.scopes,
	}, cfg.logger)
	return c, nil
}

// connect opens the configured source and records its lifecycle hooks on c.
func (c *Client) connect(cfg *clientConfig) (resultcache.Source, error) {
	switch cfg.driver {
	case driverRedis, driverValkey, driverSQLite:
		store, err := createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(context.Background(), cfg.readinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("pollsearch: %s store not ready: %w", cfg.driver, err)
		}
		c.store = store
		c.pinger = store
		c.repo = recordrepo.New(store, cfg.keyPrefix)
		return c.repo, nil

	case driverFile:
		fx, err := recordrepo.LoadFixtures(cfg.path)
		if err != nil {
			return nil, fmt.Errorf("pollsearch: %w", err)
		}
		c.pinger = fx
		return fx, nil

	case driverHTTP:
		client, err := pollws.NewClient(&pollws.Config{
			BaseURL: cfg.baseURL,
			APIKey:  cfg.apiKey,
			Timeout: cfg.fetchTimeout,
			Logger:  cfg.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("pollsearch: poll service client: %w", err)
		}
		c.pinger = client
		return client, nil

	case driverCustom:
		if cfg.source == nil {
			return nil, errors.New("pollsearch: WithSource requires a non-nil source")
		}
		return cfg.source, nil

	default:
		return nil, fmt.Errorf("pollsearch: unknown driver %q", cfg.driver)
	}
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverRedis, driverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("pollsearch: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case driverSQLite:
		s, err := dbSQLite.Open(cfg.path)
		if err != nil {
			return nil, fmt.Errorf("pollsearch: open sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("pollsearch: driver %q has no list store", cfg.driver)
	}
}

func sortOptions(cfg *clientConfig) (order.Presets, order.Key, error) {
	presets := order.DefaultPresets()
	if len(cfg.sortPresets) > 0 {
		p, err := order.ParsePresets(cfg.sortPresets)
		if err != nil {
			return nil, order.Key{}, fmt.Errorf("pollsearch: sort presets: %w", err)
		}
		presets = p
	}
	if cfg.defaultSort == "" {
		return presets, order.Key{}, nil
	}
	def, err := presets.Resolve(cfg.defaultSort)
	if err != nil {
		return nil, order.Key{}, fmt.Errorf("pollsearch: default sort: %w", err)
	}
	return presets, def, nil
}

// cacheMetrics builds collectors on the caller's registerer. Without one the
// cache reports nothing.
func cacheMetrics(cfg *clientConfig) (resultcache.Metrics, error) {
	if cfg.metricsReg == nil {
		return resultcache.Metrics{}, nil
	}
	cacheTotal, err := metrics.RegisterOrExisting(cfg.metricsReg, metrics.NewCacheTotal())
	if err != nil {
		return resultcache.Metrics{}, fmt.Errorf("pollsearch: register metrics: %w", err)
	}
	fetchDuration, err := metrics.RegisterOrExisting(cfg.metricsReg, metrics.NewFetchDuration())
	if err != nil {
		return resultcache.Metrics{}, fmt.Errorf("pollsearch: register metrics: %w", err)
	}
	fetchErrors, err := metrics.RegisterOrExisting(cfg.metricsReg, metrics.NewFetchErrorsTotal())
	if err != nil {
		return resultcache.Metrics{}, fmt.Errorf("pollsearch: register metrics: %w", err)
	}
	return resultcache.Metrics{
		CacheTotal:    cacheTotal,
		FetchDuration: fetchDuration,
		FetchErrors:   fetchErrors,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks record source connectivity. Custom sources always pass.
func (c *Client) Ping(ctx context.Context) error {
	if c.pinger == nil {
		return nil
	}
	if err := c.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// NewSession starts a widget session with no scope selected.
func (c *Client) NewSession() *Session {
	return c.proc.NewSession()
}

// SortOptions returns the configured sort option names.
func (c *Client) SortOptions() []string {
	return c.proc.Presets().Names()
}

// Cached reports whether the records of scope are already loaded.
func (c *Client) Cached(scope string) bool {
	_, ok := c.cache.Peek(scope)
	return ok
}

// Save replaces the stored records of scope in a Redis, Valkey or SQLite source.
// Scopes already loaded by this client keep serving their cached records.
func (c *Client) Save(ctx context.Context, scope string, records []Record) error {
	if c.repo == nil {
		return ErrReadOnlySource
	}
	if scope == "" {
		return ErrScopeRequired
	}
	if err := c.repo.Save(ctx, scope, records); err != nil {
		return fmt.Errorf("pollsearch: save %q: %w", scope, err)
	}
	c.logger.Debug("scope saved", zap.String("scope", scope), zap.Int("records", len(records)))
	return nil
}
