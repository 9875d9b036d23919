package sources_common

import (
	"time"

	"github.com/status-im/token-aggregator/cache"
	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/metrics"
	"github.com/status-im/token-aggregator/ratelimit"
	"github.com/status-im/token-aggregator/retry"
)

// Deps are the shared collaborators every provider is built from
type Deps struct {
	Store    cache.Store
	Limiters ratelimit.IManager
	Retry    retry.Options
	Mode     *DiscoveryMode
}

// RetryOptions converts the configured retry settings
func RetryOptions(cfg config.RetryConfig) retry.Options {
	opts := retry.DefaultOptions()
	if cfg.MaxAttempts > 0 {
		opts.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseDelay > 0 {
		opts.BaseDelay = cfg.BaseDelay
	}
	if cfg.MaxDelay > 0 {
		opts.MaxDelay = cfg.MaxDelay
	}
	return opts
}

// Pipeline builds the HTTP client and cache-aside fetcher of one source,
// both reporting to the source's metrics writer
func (d Deps) Pipeline(source, logPrefix string, cfg config.SourceConfig) (*HTTPClient, *Fetcher) {
	handler := metrics.NewMetricsWriter(source)

	opts := DefaultClientOptions()
	opts.LogPrefix = logPrefix
	if cfg.RequestTimeout > 0 {
		opts.RequestTimeout = cfg.RequestTimeout
	}

	var limiter *ratelimit.Limiter
	if d.Limiters != nil {
		limiter = d.Limiters.GetLimiter(source)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return NewHTTPClient(opts, handler), NewFetcher(source, d.Store, limiter, d.Retry, ttl, handler)
}
