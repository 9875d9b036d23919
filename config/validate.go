package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate checks that all values are usable after defaults were applied
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %q", c.Server.Port)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required when redis is enabled")
	}
	if c.Cache.Redis.MaxFailures < 0 {
		return errors.New("cache.redis.max_failures must be >= 0")
	}

	if c.Aggregator.SourceTimeout > c.Aggregator.Deadline {
		return fmt.Errorf("aggregator.source_timeout (%v) must not exceed aggregator.deadline (%v)",
			c.Aggregator.SourceTimeout, c.Aggregator.Deadline)
	}

	if c.Broadcast.Interval <= 0 {
		return errors.New("broadcast.interval must be greater than 0")
	}
	if c.Broadcast.VolumeSpikeRatio <= 1 {
		return fmt.Errorf("broadcast.volume_spike_ratio must be > 1, got %v", c.Broadcast.VolumeSpikeRatio)
	}

	if c.Sources.Retry.MaxAttempts < 1 {
		return errors.New("sources.retry.max_attempts must be >= 1")
	}
	if c.Sources.Retry.MaxDelay < c.Sources.Retry.BaseDelay {
		return errors.New("sources.retry.max_delay must be >= sources.retry.base_delay")
	}

	for _, name := range c.Sources.EnabledNames() {
		src, _ := c.Sources.ByName(name)
		if err := src.validate("sources." + name); err != nil {
			return err
		}
	}

	return nil
}

func (s SourceConfig) validate(prefix string) error {
	if s.BaseURL == "" {
		return fmt.Errorf("%s.base_url is required", prefix)
	}
	if s.MaxResults < 1 {
		return fmt.Errorf("%s.max_results must be >= 1", prefix)
	}
	if s.ExpandedMaxResults < s.MaxResults {
		return fmt.Errorf("%s.expanded_max_results (%d) must be >= max_results (%d)",
			prefix, s.ExpandedMaxResults, s.MaxResults)
	}
	if s.RateLimit.Concurrency < 1 {
		return fmt.Errorf("%s.rate_limit.concurrency must be >= 1", prefix)
	}
	return nil
}
