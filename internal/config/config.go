package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pollsearch/internal/domain/search/order"
)

// Source drivers.
const (
	DriverHTTP   = "http"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Config holds the pollsearch configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Source   SourceConfig   `yaml:"source"`
	Widget   WidgetConfig   `yaml:"widget"`
	Sessions SessionsConfig `yaml:"sessions"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SourceConfig selects and configures the record source.
type SourceConfig struct {
	Driver    string `yaml:"driver"` // http, redis, valkey, sqlite, file (default: file)
	KeyPrefix string `yaml:"key_prefix"`
	// ReadinessTimeoutSec bounds the startup wait for the redis/valkey/sqlite store.
	ReadinessTimeoutSec int `yaml:"readiness_timeout_sec"`
	// FetchTimeoutSec bounds a scope fetch shared by concurrent sessions.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`

	PollWS PollWSConfig `yaml:"pollws"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	File   FileConfig   `yaml:"file"`
}

// PollWSConfig holds poll web service settings.
type PollWSConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Size       int    `yaml:"size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RedisConfig holds Redis/Valkey list store settings.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// SQLiteConfig holds SQLite list store settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// FileConfig holds YAML fixture source settings.
type FileConfig struct {
	Path string `yaml:"path"`
}

// WidgetConfig holds search widget settings.
type WidgetConfig struct {
	PageSize            int               `yaml:"page_size"`
	MaxPaginationLinks  int               `yaml:"max_pagination_links"`
	SearchFields        []string          `yaml:"search_fields"`
	DefaultSort         string            `yaml:"default_sort"`
	SortPresets         map[string]string `yaml:"sort_presets"`
	PlaylistURLTemplate string            `yaml:"playlist_url_template"`
	Scopes              []ScopeConfig     `yaml:"scopes"`
}

// ScopeConfig names a selectable scope.
type ScopeConfig struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// SessionsConfig bounds server-side widget sessions.
type SessionsConfig struct {
	Max              int `yaml:"max"`
	IdleTTLSec       int `yaml:"idle_ttl_sec"`
	SweepIntervalSec int `yaml:"sweep_interval_sec"`
}

// ScopeIDs returns the configured scope ids in order.
func (w WidgetConfig) ScopeIDs() []string {
	out := make([]string, 0, len(w.Scopes))
	for _, s := range w.Scopes {
		out = append(out, s.ID)
	}
	return out
}

// SortOptions parses the sort presets and resolves the default sort.
func (w WidgetConfig) SortOptions() (order.Presets, order.Key, error) {
	presets := order.DefaultPresets()
	if len(w.SortPresets) > 0 {
		p, err := order.ParsePresets(w.SortPresets)
		if err != nil {
			return nil, order.Key{}, fmt.Errorf("widget.sort_presets: %w", err)
		}
		presets = p
	}
	def, err := presets.Resolve(w.DefaultSort)
	if err != nil {
		return nil, order.Key{}, fmt.Errorf("widget.default_sort: %w", err)
	}
	return presets, def, nil
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Source.Driver == "" {
		c.Source.Driver = DriverFile
	}
	if c.Source.KeyPrefix == "" {
		c.Source.KeyPrefix = "pollsearch:"
	}
	if c.Source.PollWS.Size <= 0 {
		c.Source.PollWS.Size = 1000
	}
	if c.Source.PollWS.TimeoutSec <= 0 {
		c.Source.PollWS.TimeoutSec = 10
	}
	if c.Source.ReadinessTimeoutSec <= 0 {
		c.Source.ReadinessTimeoutSec = 10
	}
	if c.Source.FetchTimeoutSec <= 0 {
		c.Source.FetchTimeoutSec = 30
	}
	if c.Widget.PageSize <= 0 {
		c.Widget.PageSize = 10
	}
	if c.Widget.MaxPaginationLinks <= 0 {
		c.Widget.MaxPaginationLinks = 15
	}
	if len(c.Widget.SearchFields) == 0 {
		c.Widget.SearchFields = []string{"BandName", "Header", "Title"}
	}
	if c.Widget.DefaultSort == "" {
		c.Widget.DefaultSort = order.PresetRecent
	}
	if c.Sessions.Max <= 0 {
		c.Sessions.Max = 1000
	}
	if c.Sessions.IdleTTLSec <= 0 {
		c.Sessions.IdleTTLSec = 1800
	}
	if c.Sessions.SweepIntervalSec <= 0 {
		c.Sessions.SweepIntervalSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Source.Driver {
	case DriverHTTP:
		if c.Source.PollWS.BaseURL == "" {
			return fmt.Errorf("source.pollws.base_url is required for driver %q", c.Source.Driver)
		}
	case DriverRedis, DriverValkey:
		if len(c.Source.Redis.Addrs) == 0 {
			return fmt.Errorf("source.redis.addrs is required for driver %q", c.Source.Driver)
		}
	case DriverSQLite:
		if c.Source.SQLite.Path == "" {
			return fmt.Errorf("source.sqlite.path is required for driver %q", c.Source.Driver)
		}
	case DriverFile:
		if c.Source.File.Path == "" {
			return fmt.Errorf("source.file.path is required for driver %q", c.Source.Driver)
		}
	default:
		return fmt.Errorf("source.driver must be one of http, redis, valkey, sqlite, file; got %q", c.Source.Driver)
	}

	if c.Widget.PageSize > 1000 {
		return fmt.Errorf("widget.page_size must be at most 1000, got %d", c.Widget.PageSize)
	}
	if _, _, err := c.Widget.SortOptions(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Widget.Scopes))
	for i, s := range c.Widget.Scopes {
		if s.ID == "" {
			return fmt.Errorf("widget.scopes[%d].id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("widget.scopes: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
