package pollsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// Source drivers.
const (
	driverRedis  = "redis"
	driverValkey = "valkey"
	driverSQLite = "sqlite"
	driverFile   = "file"
	driverHTTP   = "http"
	driverCustom = "custom"
)

type clientConfig struct {
	driver   string
	addrs    []string
	password string
	path     string
	baseURL  string
	apiKey   string
	source   Source

	keyPrefix        string
	readinessTimeout time.Duration
	fetchTimeout     time.Duration

	pageSize            int
	maxLinks            int
	searchFields        []string
	sortPresets         map[string]string
	defaultSort         string
	playlistURLTemplate string
	scopes              []string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis reads record lists from a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey reads record lists from a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSQLite reads record lists from a SQLite database file.
// The file is created when missing.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.path = path
	})
}

// WithFixtures serves records from a YAML fixtures file. The source is read-only.
func WithFixtures(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverFile
		c.path = path
	})
}

// WithPollService fetches records from the poll web service.
func WithPollService(baseURL, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverHTTP
		c.baseURL = baseURL
		c.apiKey = apiKey
	})
}

// WithSource plugs in a custom record source.
func WithSource(s Source) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverCustom
		c.source = s
	})
}

// WithKeyPrefix namespaces list keys in a shared Redis, Valkey or SQLite store.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithReadinessTimeout bounds the wait for a list store to answer. Defaults to 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithFetchTimeout bounds each scope fetch, including poll web service requests.
// Defaults to 30s for the fetch and 10s per poll web service request.
func WithFetchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.fetchTimeout = d
	})
}

// WithPageSize sets records per page. Defaults to 10.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = n
	})
}

// WithMaxPaginationLinks caps the page-number links. Defaults to 15.
func WithMaxPaginationLinks(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxLinks = n
	})
}

// WithSearchFields sets the record fields the search term matches against.
func WithSearchFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchFields = fields
	})
}

// WithSortPresets replaces the named sort options (name -> "field:dir" or "random").
func WithSortPresets(presets map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sortPresets = presets
	})
}

// WithDefaultSort sets the sort applied to new sessions and queries.
func WithDefaultSort(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultSort = key
	})
}

// WithPlaylistURLTemplate sets the play-all link; "{scope}" is replaced.
func WithPlaylistURLTemplate(tmpl string) Option {
	return optionFunc(func(c *clientConfig) {
		c.playlistURLTemplate = tmpl
	})
}

// WithScopes restricts selectable scopes. Unlisted scopes fail with ErrScopeNotFound.
func WithScopes(scopes ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.scopes = scopes
	})
}

// WithLogger sets a structured logger for the client.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers cache and fetch metrics with the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
