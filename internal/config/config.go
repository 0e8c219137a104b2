package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"

	"staygrip/internal/domain"
	"staygrip/internal/eventbus"
	"staygrip/internal/searchstate"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Config represents the application configuration
type Config struct {
	Version int            `toml:"version"`
	API     APISettings    `toml:"api"`
	Search  SearchSettings `toml:"search"`
	Log     LogSettings    `toml:"log"`
	Fluent  FluentSettings `toml:"fluent"`
	UI      UISettings     `toml:"ui"`
}

// APISettings configures the search API client
type APISettings struct {
	BaseURL    string   `toml:"base_url"`
	Timeout    Duration `toml:"timeout"`
	RateLimit  float64  `toml:"rate_limit"`
	Burst      int      `toml:"burst"`
	MaxRetries int      `toml:"max_retries"`
	// ViewTypeRemoveList hides view types from the filter panel
	ViewTypeRemoveList []string `toml:"view_type_remove_list,omitempty"`
}

// SearchSettings configures the search state, URL and controller
type SearchSettings struct {
	PageSizes           []int    `toml:"page_sizes"`
	PriceMin            float64  `toml:"price_min"`
	PriceMax            float64  `toml:"price_max"`
	DefaultPage         int      `toml:"default_page"`
	DefaultPageSize     int      `toml:"default_page_size"`
	DefaultSortBy       string   `toml:"default_sort_by"`
	IncludePlaceDetails bool     `toml:"include_place_details"`
	IncludeListIDInURL  bool     `toml:"include_list_id_in_url"`
	CacheTTL            Duration `toml:"cache_ttl"`
	CacheSize           int64    `toml:"cache_size"`
	FetchTimeout        Duration `toml:"fetch_timeout"`
	MaxConsecutiveSyncs int      `toml:"max_consecutive_syncs"`
}

// LogSettings configures local logging
type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
	JSON  bool   `toml:"json"`
	Color bool   `toml:"color"`
}

// FluentSettings configures log shipping to fluentd
type FluentSettings struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Level   string `toml:"level"`
	Tag     string `toml:"tag"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	StartURL string `toml:"start_url"`
}

// Duration is a time.Duration written as a string such as "15s"
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service using the default location
func NewConfigService() ConfigService {
	return &configService{filePath: DefaultPath()}
}

// NewConfigServiceWithBus creates a config service with event bus support.
// An empty path selects the default location.
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{bus: bus, filePath: path}
}

// DefaultPath returns <user config dir>/staygrip/config.toml
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "staygrip", "config.toml")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the config file, writing the defaults first if it does not
// exist, then applies environment overrides
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		if err := cs.SaveToPath(DefaultConfig(), cs.filePath); err != nil {
			return nil, err
		}
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cs.filePath, err)
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Missing keys keep
// their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version > CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", cfg.Version, CurrentVersion)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	opts := searchstate.DefaultOptions()
	return &Config{
		Version: CurrentVersion,
		API: APISettings{
			BaseURL:    "http://localhost:8080",
			Timeout:    Duration{10 * time.Second},
			RateLimit:  5,
			Burst:      2,
			MaxRetries: 2,
		},
		Search: SearchSettings{
			PageSizes:           append([]int(nil), opts.PageSizes...),
			PriceMin:            opts.PriceBounds.Min,
			PriceMax:            opts.PriceBounds.Max,
			DefaultPage:         opts.DefaultPage,
			DefaultPageSize:     opts.DefaultPageSize,
			DefaultSortBy:       string(opts.DefaultSortBy),
			CacheTTL:            Duration{2 * time.Minute},
			CacheSize:           500,
			FetchTimeout:        Duration{15 * time.Second},
			MaxConsecutiveSyncs: 3,
		},
		Log: LogSettings{
			Level: "info",
			File:  "staygrip.log",
		},
		Fluent: FluentSettings{
			Host:  "localhost",
			Port:  24224,
			Level: "info",
			Tag:   "staygrip",
		},
		UI: UISettings{
			StartURL: "/properties",
		},
	}
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, errors.New("api.max_retries must not be negative"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}

	s := c.Search
	if len(s.PageSizes) == 0 {
		errs = append(errs, errors.New("search.page_sizes must not be empty"))
	}
	for _, size := range s.PageSizes {
		if size < 1 {
			errs = append(errs, fmt.Errorf("search.page_sizes contains %d", size))
		}
	}
	if len(s.PageSizes) > 0 && !slices.Contains(s.PageSizes, s.DefaultPageSize) {
		errs = append(errs, fmt.Errorf("search.default_page_size %d is not one of %v", s.DefaultPageSize, s.PageSizes))
	}
	if s.DefaultPage < 1 {
		errs = append(errs, errors.New("search.default_page must be at least 1"))
	}
	if s.PriceMin < 0 || s.PriceMax <= s.PriceMin {
		errs = append(errs, fmt.Errorf("search price bounds %v..%v are invalid", s.PriceMin, s.PriceMax))
	}
	if !searchstate.SortKey(s.DefaultSortBy).Valid() {
		errs = append(errs, fmt.Errorf("search.default_sort_by %q is unknown", s.DefaultSortBy))
	}
	if s.MaxConsecutiveSyncs < 1 {
		errs = append(errs, errors.New("search.max_consecutive_syncs must be at least 1"))
	}

	if c.Fluent.Enabled && (c.Fluent.Host == "" || c.Fluent.Port <= 0) {
		errs = append(errs, errors.New("fluent.host and fluent.port are required when fluent is enabled"))
	}

	return errors.Join(errs...)
}

// SearchOptions converts the search settings for the state store
func (c *Config) SearchOptions() searchstate.Options {
	return searchstate.Options{
		DefaultPage:     c.Search.DefaultPage,
		DefaultPageSize: c.Search.DefaultPageSize,
		DefaultSortBy:   searchstate.SortKey(c.Search.DefaultSortBy),
		PageSizes:       append([]int(nil), c.Search.PageSizes...),
		PriceBounds:     searchstate.PriceBounds{Min: c.Search.PriceMin, Max: c.Search.PriceMax},
	}
}
