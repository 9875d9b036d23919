package cache

import "time"

// Config represents cache configuration
type Config struct {
	// TTL is the standard time to live for cached entries
	TTL time.Duration `yaml:"ttl"`

	// Redis configuration for the primary durable backend
	Redis RedisConfig `yaml:"redis"`

	// GoCache configuration for the in-process fallback
	GoCache GoCacheConfig `yaml:"go_cache"`
}

// RedisConfig configures the primary Redis backend
type RedisConfig struct {
	// Enabled whether Redis is used at all. When false the service starts in fallback mode.
	Enabled bool `yaml:"enabled"`

	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// DialTimeout bounds the initial connection attempt and every operation
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// MaxFailures is the number of consecutive backend errors tolerated
	// before the service switches to fallback mode
	MaxFailures int `yaml:"max_failures"`
}

// GoCacheConfig configuration for in-memory go-cache
type GoCacheConfig struct {
	// DefaultExpiration default expiration time for cache items
	// If 0, items never expire by default
	DefaultExpiration time.Duration `yaml:"default_expiration"`

	// CleanupInterval interval for cleaning up expired items
	// Should be less than DefaultExpiration
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() Config {
	return Config{
		TTL: 30 * time.Second,
		Redis: RedisConfig{
			Enabled:     true,
			Addr:        "localhost:6379",
			DialTimeout: 2 * time.Second,
			MaxFailures: 3,
		},
		GoCache: GoCacheConfig{
			DefaultExpiration: 5 * time.Minute,
			CleanupInterval:   10 * time.Minute,
		},
	}
}

// GetTTL returns the standard TTL, falling back to the default
func (c Config) GetTTL() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return 30 * time.Second
}
