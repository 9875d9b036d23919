package config

import (
	"fmt"
	"time"
)

// Source names used as limiter keys, cache key prefixes and TokenRecord.Source tags
const (
	SourceDexScreener   = "dexscreener"
	SourceGeckoTerminal = "geckoterminal"
	SourceJupiter       = "jupiter"
)

// SourcesConfig configures every upstream provider
type SourcesConfig struct {
	// Expanded selects ExpandedMaxResults instead of MaxResults at startup.
	// It can be switched at runtime through the discovery mode endpoint.
	Expanded bool `yaml:"expanded"`

	Retry RetryConfig `yaml:"retry"`

	DexScreener   SourceConfig `yaml:"dexscreener"`
	GeckoTerminal SourceConfig `yaml:"geckoterminal"`
	Jupiter       SourceConfig `yaml:"jupiter"`
}

// SourceConfig configures a single upstream provider
type SourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`

	// TTL for the source's own cache-aside entries
	TTL time.Duration `yaml:"ttl"`

	// RequestTimeout bounds one HTTP round-trip
	RequestTimeout time.Duration `yaml:"request_timeout"`

	MaxResults         int `yaml:"max_results"`
	ExpandedMaxResults int `yaml:"expanded_max_results"`

	RateLimit RateLimit `yaml:"rate_limit"`

	// Provider specific parameters
	Network       string `yaml:"network"`        // geckoterminal network id
	TrendingQuery string `yaml:"trending_query"` // dexscreener search term used for trending
	Interval      string `yaml:"interval"`       // jupiter toptrending interval
}

// RetryConfig configures retry-with-backoff around every upstream call
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// ResultCap returns the per-query result cap for the given discovery mode
func (s SourceConfig) ResultCap(expanded bool) int {
	if expanded && s.ExpandedMaxResults > 0 {
		return s.ExpandedMaxResults
	}
	return s.MaxResults
}

// ByName returns the config of the named source
func (s *SourcesConfig) ByName(name string) (SourceConfig, error) {
	switch name {
	case SourceDexScreener:
		return s.DexScreener, nil
	case SourceGeckoTerminal:
		return s.GeckoTerminal, nil
	case SourceJupiter:
		return s.Jupiter, nil
	}
	return SourceConfig{}, fmt.Errorf("unknown source %q", name)
}

// RateLimits returns the limiter settings of every enabled source keyed by name
func (s *SourcesConfig) RateLimits() map[string]RateLimit {
	limits := make(map[string]RateLimit)
	for _, name := range s.EnabledNames() {
		src, _ := s.ByName(name)
		limits[name] = src.RateLimit.WithDefaults()
	}
	return limits
}

// EnabledNames returns names of enabled sources in a fixed order
func (s *SourcesConfig) EnabledNames() []string {
	names := make([]string, 0, 3)
	if s.DexScreener.Enabled {
		names = append(names, SourceDexScreener)
	}
	if s.GeckoTerminal.Enabled {
		names = append(names, SourceGeckoTerminal)
	}
	if s.Jupiter.Enabled {
		names = append(names, SourceJupiter)
	}
	return names
}
