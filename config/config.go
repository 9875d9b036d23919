package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/status-im/token-aggregator/cache"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Cache      cache.Config     `yaml:"cache"`
	Sources    SourcesConfig    `yaml:"sources"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Broadcast  BroadcastConfig  `yaml:"broadcast"`
	History    HistoryConfig    `yaml:"history"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// AuthConfig lists API keys allowed to call cache-mutating endpoints.
// An empty list denies every mutating call.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// AggregatorConfig bounds the fan-out to upstream sources
type AggregatorConfig struct {
	// Deadline is the global budget for one fan-out
	Deadline time.Duration `yaml:"deadline"`
	// SourceTimeout is the per-source call budget nested inside Deadline
	SourceTimeout time.Duration `yaml:"source_timeout"`
}

// BroadcastConfig configures the delta broadcast cycle
type BroadcastConfig struct {
	Interval time.Duration `yaml:"interval"`
	// PriceChangeThreshold is the relative price move that triggers an update (0.01 = 1%)
	PriceChangeThreshold float64 `yaml:"price_change_threshold"`
	// VolumeSpikeRatio is the volume multiple that classifies a spike
	VolumeSpikeRatio float64 `yaml:"volume_spike_ratio"`
	// SnapshotTTL evicts addresses not returned by upstream for this long
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
}

// HistoryConfig configures daily price snapshot persistence.
// Disabled when DatabaseURL is empty.
type HistoryConfig struct {
	DatabaseURL    string        `yaml:"database_url"`
	RecordInterval time.Duration `yaml:"record_interval"`
}

// Enabled reports whether price snapshots are persisted
func (h HistoryConfig) Enabled() bool {
	return h.DatabaseURL != ""
}

// LoadConfig reads the YAML file at path, expands ${VAR} references,
// applies environment overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{Cache: cache.DefaultCacheConfig()}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Cache.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Cache.Redis.Password = password
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.History.DatabaseURL = dsn
	}
}
