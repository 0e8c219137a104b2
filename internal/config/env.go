package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "STAYGRIP_"

// LoadDotEnv loads .env style files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with STAYGRIP_* environment variables
func ApplyEnv(cfg *Config) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := cast.ToIntE(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(name); ok {
			f, err := cast.ToFloat64E(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	duration := func(name string, dst *Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			dst.Duration = d
		}
	}

	str("API_BASE_URL", &cfg.API.BaseURL)
	duration("API_TIMEOUT", &cfg.API.Timeout)
	float("API_RATE_LIMIT", &cfg.API.RateLimit)
	integer("API_BURST", &cfg.API.Burst)
	integer("API_MAX_RETRIES", &cfg.API.MaxRetries)

	integer("SEARCH_DEFAULT_PAGE_SIZE", &cfg.Search.DefaultPageSize)
	str("SEARCH_DEFAULT_SORT_BY", &cfg.Search.DefaultSortBy)
	float("SEARCH_PRICE_MIN", &cfg.Search.PriceMin)
	float("SEARCH_PRICE_MAX", &cfg.Search.PriceMax)
	boolean("SEARCH_INCLUDE_PLACE_DETAILS", &cfg.Search.IncludePlaceDetails)
	boolean("SEARCH_INCLUDE_LIST_ID_IN_URL", &cfg.Search.IncludeListIDInURL)
	duration("SEARCH_CACHE_TTL", &cfg.Search.CacheTTL)
	duration("SEARCH_FETCH_TIMEOUT", &cfg.Search.FetchTimeout)

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FILE", &cfg.Log.File)
	boolean("LOG_JSON", &cfg.Log.JSON)
	boolean("LOG_COLOR", &cfg.Log.Color)

	boolean("FLUENT_ENABLED", &cfg.Fluent.Enabled)
	str("FLUENT_HOST", &cfg.Fluent.Host)
	integer("FLUENT_PORT", &cfg.Fluent.Port)
	str("FLUENT_LEVEL", &cfg.Fluent.Level)

	str("START_URL", &cfg.UI.StartURL)

	return errors.Join(errs...)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
