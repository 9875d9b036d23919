package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort                 = "8080"
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
	DefaultAggregatorDeadline   = 25 * time.Second
	DefaultSourceTimeout        = 8 * time.Second
	DefaultBroadcastInterval    = 5 * time.Second
	DefaultPriceChangeThreshold = 0.01
	DefaultVolumeSpikeRatio     = 1.5
	DefaultSnapshotTTL          = time.Hour
	DefaultRecordInterval       = 24 * time.Hour
	DefaultRetryMaxAttempts     = 3
	DefaultRetryBaseDelay       = 500 * time.Millisecond
	DefaultRetryMaxDelay        = 5 * time.Second
	DefaultSourceTTL            = 30 * time.Second
	DefaultRequestTimeout       = 8 * time.Second
	DefaultMaxResults           = 50
	DefaultExpandedMaxResults   = 200

	DefaultDexScreenerURL   = "https://api.dexscreener.com"
	DefaultGeckoTerminalURL = "https://api.geckoterminal.com"
	DefaultJupiterURL       = "https://lite-api.jup.ag"
	DefaultNetwork          = "solana"
	DefaultTrendingQuery    = "solana"
	DefaultJupiterInterval  = "24h"
)

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}

	if c.Aggregator.Deadline == 0 {
		c.Aggregator.Deadline = DefaultAggregatorDeadline
	}
	if c.Aggregator.SourceTimeout == 0 {
		c.Aggregator.SourceTimeout = DefaultSourceTimeout
	}

	if c.Broadcast.Interval == 0 {
		c.Broadcast.Interval = DefaultBroadcastInterval
	}
	if c.Broadcast.PriceChangeThreshold == 0 {
		c.Broadcast.PriceChangeThreshold = DefaultPriceChangeThreshold
	}
	if c.Broadcast.VolumeSpikeRatio == 0 {
		c.Broadcast.VolumeSpikeRatio = DefaultVolumeSpikeRatio
	}
	if c.Broadcast.SnapshotTTL == 0 {
		c.Broadcast.SnapshotTTL = DefaultSnapshotTTL
	}

	if c.History.RecordInterval == 0 {
		c.History.RecordInterval = DefaultRecordInterval
	}

	c.Sources.applyDefaults()
}

func (s *SourcesConfig) applyDefaults() {
	if s.Retry.MaxAttempts == 0 {
		s.Retry.MaxAttempts = DefaultRetryMaxAttempts
	}
	if s.Retry.BaseDelay == 0 {
		s.Retry.BaseDelay = DefaultRetryBaseDelay
	}
	if s.Retry.MaxDelay == 0 {
		s.Retry.MaxDelay = DefaultRetryMaxDelay
	}

	// A config without any enabled source runs all of them
	if !s.DexScreener.Enabled && !s.GeckoTerminal.Enabled && !s.Jupiter.Enabled {
		s.DexScreener.Enabled = true
		s.GeckoTerminal.Enabled = true
		s.Jupiter.Enabled = true
	}

	applySourceDefaults(&s.DexScreener, DefaultDexScreenerURL)
	applySourceDefaults(&s.GeckoTerminal, DefaultGeckoTerminalURL)
	applySourceDefaults(&s.Jupiter, DefaultJupiterURL)

	if s.DexScreener.TrendingQuery == "" {
		s.DexScreener.TrendingQuery = DefaultTrendingQuery
	}
	if s.GeckoTerminal.Network == "" {
		s.GeckoTerminal.Network = DefaultNetwork
	}
	if s.Jupiter.Interval == "" {
		s.Jupiter.Interval = DefaultJupiterInterval
	}
}

func applySourceDefaults(src *SourceConfig, baseURL string) {
	if src.BaseURL == "" {
		src.BaseURL = baseURL
	}
	if src.TTL == 0 {
		src.TTL = DefaultSourceTTL
	}
	if src.RequestTimeout == 0 {
		src.RequestTimeout = DefaultRequestTimeout
	}
	if src.MaxResults == 0 {
		src.MaxResults = DefaultMaxResults
	}
	if src.ExpandedMaxResults == 0 {
		src.ExpandedMaxResults = DefaultExpandedMaxResults
	}
	src.RateLimit = src.RateLimit.WithDefaults()
}
