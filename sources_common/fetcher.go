package sources_common

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/cache"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/ratelimit"
	"github.com/status-im/token-aggregator/retry"
)

// LoadFunc performs one upstream round-trip and transforms the payload
type LoadFunc func(ctx context.Context) ([]interfaces.TokenRecord, error)

// Fetcher is the cache-aside pipeline shared by every provider:
// cache hit returns immediately, a miss goes through retry, then the
// source limiter, then the HTTP call, and the result is written through.
type Fetcher struct {
	source  string
	store   cache.Store
	limiter *ratelimit.Limiter
	retry   retry.Options
	ttl     time.Duration
	handler IHttpStatusHandler

	healthy atomic.Bool
}

// NewFetcher creates the pipeline for one source. store and limiter may be nil.
func NewFetcher(source string, store cache.Store, limiter *ratelimit.Limiter, retryOpts retry.Options, ttl time.Duration, handler IHttpStatusHandler) *Fetcher {
	if retryOpts.Retryable == nil {
		retryOpts.Retryable = IsRetryable
	}
	if retryOpts.MinDelay == nil {
		retryOpts.MinDelay = RetryAfter
	}

	f := &Fetcher{
		source:  source,
		store:   store,
		limiter: limiter,
		retry:   retryOpts,
		ttl:     ttl,
		handler: handler,
	}

	userOnRetry := retryOpts.OnRetry
	f.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Printf("%s: Retry %d/%d in %.2fs after error: %v", f.source, attempt, f.retry.MaxAttempts-1, delay.Seconds(), err)
		if f.handler != nil {
			f.handler.OnRetry()
		}
		if userOnRetry != nil {
			userOnRetry(attempt, delay, err)
		}
	}

	return f
}

// Source returns the source tag
func (f *Fetcher) Source() string {
	return f.source
}

// Healthy reports whether at least one upstream call succeeded
func (f *Fetcher) Healthy() bool {
	return f.healthy.Load()
}

// Fetch returns records for key from cache or loads them upstream.
// Upstream failures are logged and returned wrapped in ErrUpstream.
func (f *Fetcher) Fetch(ctx context.Context, key string, load LoadFunc) ([]interfaces.TokenRecord, error) {
	if f.store != nil {
		if records, found := cache.GetJSON[[]interfaces.TokenRecord](ctx, f.store, key); found {
			return records, nil
		}
	}

	records, err := retry.Do(ctx, f.retry, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		return ratelimit.Do(ctx, f.limiter, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
			return load(ctx)
		})
	})
	if err != nil {
		log.Warnf("%s: fetch %s failed: %v", f.source, key, err)
		return nil, fmt.Errorf("%s: %w: %w", f.source, ErrUpstream, err)
	}

	f.healthy.Store(true)

	if records == nil {
		records = []interfaces.TokenRecord{}
	}
	if f.store != nil {
		cache.SetJSON(ctx, f.store, key, records, f.ttl)
	}

	return records, nil
}

// CacheKey builds "<source>:<operation>:<params...>"
func CacheKey(source, operation string, params ...string) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, source, operation)
	for _, p := range params {
		parts = append(parts, strings.ToLower(strings.TrimSpace(p)))
	}
	return strings.Join(parts, ":")
}
