package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/newsportal/pkg/domain"
)

//go:embed defaults.yml
var bundled []byte

// Config holds the application configuration
type Config struct {
	Server   ServerConfig               `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Fetch    FetchConfig                `yaml:"fetch" json:"fetch" jsonschema:"description=Source fetching configuration"`
	Cache    CacheConfig                `yaml:"cache" json:"cache" jsonschema:"description=Document cache configuration"`
	Document DocumentConfig             `yaml:"document" json:"document" jsonschema:"description=Assembled document metadata"`
	Sections map[string][]domain.Source `yaml:"sections" json:"sections" jsonschema:"required,description=Sources grouped by section key"`
}

// ServerConfig holds http server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"required,default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Public URL used in generated feeds"`
}

// FetchConfig holds source fetching settings
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=8s,description=Timeout for a single source fetch"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for source requests, browser-like by default"`
	MaxItems    int           `yaml:"max_items" json:"max_items" jsonschema:"default=20,minimum=1,description=Maximum items per section"`
	MaxBodySize int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=10485760,description=Maximum feed size in bytes"`
}

// CacheConfig holds document cache settings
type CacheConfig struct {
	Revalidate time.Duration `yaml:"revalidate" json:"revalidate" jsonschema:"default=120s,description=Time a built document stays fresh"`
	Stale      time.Duration `yaml:"stale" json:"stale" jsonschema:"default=60s,description=Time a stale document is served while rebuilding"`
	Disabled   bool          `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Build the document on every request"`
	DSN        string        `yaml:"dsn" json:"dsn" jsonschema:"description=SQLite DSN for a persistent snapshot, in-memory if empty"`
	Warm       bool          `yaml:"warm" json:"warm" jsonschema:"default=false,description=Rebuild the document periodically in background"`

	revalidateSet, staleSet bool // explicit values in the file, zero is kept as is
}

// DocumentConfig holds document metadata and the general section key
type DocumentConfig struct {
	domain.Meta `yaml:",inline"`
	General     string `yaml:"general" json:"general" jsonschema:"default=geral,description=Section published as top-level items"`
}

// Load reads configuration from a YAML file, empty path means bundled configuration.
// A file without any sections gets all bundled sections, otherwise only its own sections are used.
func Load(path string) (*Config, error) {
	data := bundled
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil { //nolint:gosec // file path comes from CLI flag
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	if len(cfg.Sections) == 0 {
		defaults, err := parse(bundled)
		if err != nil {
			return nil, fmt.Errorf("bundled config: %w", err)
		}
		cfg.Sections = defaults.Sections
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// zero durations can't tell an explicit 0 from a missing key
	var explicit struct {
		Cache struct {
			Revalidate *time.Duration `yaml:"revalidate"`
			Stale      *time.Duration `yaml:"stale"`
		} `yaml:"cache"`
	}
	if err := yaml.Unmarshal([]byte(expanded), &explicit); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Cache.revalidateSet = explicit.Cache.Revalidate != nil
	cfg.Cache.staleSet = explicit.Cache.Stale != nil
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://" + cfg.Server.Listen
		if strings.HasPrefix(cfg.Server.Listen, ":") {
			cfg.Server.BaseURL = "http://localhost" + cfg.Server.Listen
		}
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	// fetch
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 8 * time.Second
	}
	if cfg.Fetch.MaxItems == 0 {
		cfg.Fetch.MaxItems = 20
	}
	if cfg.Fetch.MaxBodySize == 0 {
		cfg.Fetch.MaxBodySize = 10 * 1024 * 1024
	}

	// cache, explicit zero revalidate disables caching
	if cfg.Cache.Revalidate == 0 && !cfg.Cache.revalidateSet {
		cfg.Cache.Revalidate = 120 * time.Second
	}
	if cfg.Cache.Stale == 0 && !cfg.Cache.staleSet {
		cfg.Cache.Stale = 60 * time.Second
	}
	if cfg.Cache.Revalidate == 0 {
		cfg.Cache.Disabled = true
	}

	// document
	if cfg.Document.Title == "" {
		cfg.Document.Title = "Portal de Notícias Global"
	}
	if cfg.Document.Description == "" {
		cfg.Document.Description = "Agregador de Notícias Multi-fontes"
	}
	if cfg.Document.Link == "" {
		cfg.Document.Link = "/"
	}
	if cfg.Document.General == "" {
		cfg.Document.General = "geral"
	}

	// sources, name defaults to url
	for key, sources := range cfg.Sections {
		for i := range sources {
			sources[i].URL = strings.TrimSpace(sources[i].URL)
			if sources[i].Name == "" {
				sources[i].Name = sources[i].URL
			}
		}
		cfg.Sections[key] = sources
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if cfg.Fetch.MaxItems < 1 {
		return fmt.Errorf("fetch max_items must be at least 1")
	}
	if cfg.Fetch.MaxBodySize < 0 {
		return fmt.Errorf("fetch max_body_size must be positive")
	}
	if cfg.Cache.Revalidate < 0 || cfg.Cache.Stale < 0 {
		return fmt.Errorf("cache revalidate and stale must be non-negative")
	}

	if _, ok := cfg.Sections[cfg.Document.General]; !ok {
		return fmt.Errorf("general section %q is not configured", cfg.Document.General)
	}
	for _, key := range cfg.SectionKeys() {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "/ ") {
			return fmt.Errorf("invalid section key %q", key)
		}
		for _, src := range cfg.Sections[key] {
			u, err := url.Parse(src.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("section %s: invalid source url %q", key, src.URL)
			}
		}
	}
	return nil
}

// SectionKeys returns configured section keys, sorted
func (c *Config) SectionKeys() []string {
	keys := make([]string, 0, len(c.Sections))
	for k := range c.Sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetCacheConfig returns cache configuration
func (c *Config) GetCacheConfig() CacheConfig {
	return c.Cache
}

// GetSections returns sources grouped by section key
func (c *Config) GetSections() map[string][]domain.Source {
	return c.Sections
}

// GetDocumentConfig returns document metadata configuration
func (c *Config) GetDocumentConfig() DocumentConfig {
	return c.Document
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
