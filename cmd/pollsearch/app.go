package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pollsearch/internal/config"
	"github.com/kailas-cloud/pollsearch/internal/db"
	dbRedis "github.com/kailas-cloud/pollsearch/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/pollsearch/internal/db/sqlite"
	"github.com/kailas-cloud/pollsearch/internal/metrics"
	recordrepo "github.com/kailas-cloud/pollsearch/internal/repository/record"
	"github.com/kailas-cloud/pollsearch/internal/repository/resultcache"
	"github.com/kailas-cloud/pollsearch/internal/transport/pollws"
	healthuc "github.com/kailas-cloud/pollsearch/internal/usecase/health"
	"github.com/kailas-cloud/pollsearch/internal/usecase/resultset"
)

// recordSource is the configured record source with its lifecycle.
type recordSource struct {
	name   string
	fetch  resultcache.Source
	pinger healthuc.SourcePinger
	close  func()
}

// buildSource assembles the record source named by source.driver.
func buildSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (recordSource, error) {
	driver := cfg.Source.Driver
	switch driver {
	case config.DriverHTTP:
		client, err := pollws.NewClient(&pollws.Config{
			BaseURL: cfg.Source.PollWS.BaseURL,
			APIKey:  cfg.Source.PollWS.APIKey,
			Size:    cfg.Source.PollWS.Size,
			Timeout: time.Duration(cfg.Source.PollWS.TimeoutSec) * time.Second,
			Logger:  logger,
		})
		if err != nil {
			return recordSource{}, fmt.Errorf("poll web service client: %w", err)
		}
		return recordSource{name: driver, fetch: client, pinger: client, close: func() {}}, nil

	case config.DriverRedis, config.DriverValkey, config.DriverSQLite:
		store, err := openListStore(ctx, cfg)
		if err != nil {
			return recordSource{}, err
		}
		repo := recordrepo.New(store, cfg.Source.KeyPrefix)
		return recordSource{name: driver, fetch: repo, pinger: store, close: store.Close}, nil

	case config.DriverFile:
		fx, err := recordrepo.LoadFixtures(cfg.Source.File.Path)
		if err != nil {
			return recordSource{}, err
		}
		return recordSource{name: driver, fetch: fx, pinger: fx, close: func() {}}, nil

	default:
		return recordSource{}, fmt.Errorf("unknown source driver %q", driver)
	}
}

// openListStore opens the redis/valkey or sqlite list store and waits until it answers.
func openListStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Source.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Source.Redis.Addrs,
			Username: cfg.Source.Redis.Username,
			Password: cfg.Source.Redis.Password,
			DB:       cfg.Source.Redis.DB,
		})
	case config.DriverSQLite:
		store, err = dbSQLite.Open(cfg.Source.SQLite.Path)
	default:
		return nil, fmt.Errorf("source driver %q has no list store", cfg.Source.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Source.Driver, err)
	}

	timeout := time.Duration(cfg.Source.ReadinessTimeoutSec) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", cfg.Source.Driver, err)
	}
	return store, nil
}

// newProcessor wires the fetch-once cache and the result set processor.
func newProcessor(cfg config.Config, src recordSource, logger *zap.Logger) (*resultset.Processor, error) {
	presets, def, err := cfg.Widget.SortOptions()
	if err != nil {
		return nil, err
	}

	cache := resultcache.New(src.fetch, src.name, resultcache.Metrics{
		CacheTotal:    metrics.CacheTotal,
		FetchDuration: metrics.FetchDuration,
		FetchErrors:   metrics.FetchErrorsTotal,
	}, logger).WithFetchTimeout(time.Duration(cfg.Source.FetchTimeoutSec) * time.Second)

	return resultset.New(cache, resultset.Config{
		PageSize:            cfg.Widget.PageSize,
		MaxPaginationLinks:  cfg.Widget.MaxPaginationLinks,
		SearchFields:        cfg.Widget.SearchFields,
		DefaultSort:         def,
		Presets:             presets,
		PlaylistURLTemplate: cfg.Widget.PlaylistURLTemplate,
		Scopes:              cfg.Widget.ScopeIDs(),
	}, logger), nil
}

// loadConfig loads config/<env>.yaml and resolves the effective log level.
func loadConfig(opts *rootOptions) (config.Config, string, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	return cfg, level, nil
}
