package aggregator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/status-im/token-aggregator/cache"
	"github.com/status-im/token-aggregator/history"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/metrics"
)

const (
	// TokensCacheKey holds the merged token list
	TokensCacheKey = "aggregated:tokens"
	// searchCachePrefix holds merged adapter search results on the fallback path
	searchCachePrefix = "aggregated:search:"
	// invalidatePattern matches every merged-result key and no adapter key
	invalidatePattern = "aggregated:*"
)

// Config bounds one fan-out
type Config struct {
	// Deadline is the global budget; on expiry the fan-out yields nothing
	Deadline time.Duration
	// SourceTimeout bounds each source call inside Deadline
	SourceTimeout time.Duration
	// CacheTTL is how long a merged result is cached
	CacheTTL time.Duration
}

// SourceStatus is the outcome of the latest call to one source
type SourceStatus struct {
	Name        string    `json:"name"`
	Healthy     bool      `json:"healthy"`
	Records     int       `json:"records"`
	LastError   string    `json:"last_error,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// Engine fans out to every source, merges their records and caches the result
type Engine struct {
	sources []interfaces.TokenSource
	store   cache.Store
	history history.Reader
	config  Config
	now     func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	statuses map[string]SourceStatus
}

// NewEngine creates an engine over sources. reader may be nil, in which case
// the 7d price change is not derived from history.
func NewEngine(sources []interfaces.TokenSource, store cache.Store, reader history.Reader, config Config) *Engine {
	statuses := make(map[string]SourceStatus, len(sources))
	for _, src := range sources {
		statuses[src.Name()] = SourceStatus{Name: src.Name()}
	}

	return &Engine{
		sources:  sources,
		store:    store,
		history:  reader,
		config:   config,
		now:      time.Now,
		statuses: statuses,
	}
}

// GetAll returns the merged token list. It never fails: a total outage or an
// expired deadline yields an empty list.
func (e *Engine) GetAll(ctx context.Context, useCache bool) []interfaces.TokenRecord {
	records, _ := e.GetAllWithStatus(ctx, useCache)
	return records
}

// GetAllWithStatus is GetAll reporting whether the merged cache served the call.
// The returned records are shared with concurrent callers and must not be modified.
func (e *Engine) GetAllWithStatus(ctx context.Context, useCache bool) ([]interfaces.TokenRecord, interfaces.CacheStatus) {
	status := interfaces.CacheStatusBypass
	if useCache {
		if records, ok := cache.GetJSON[[]interfaces.TokenRecord](ctx, e.store, TokensCacheKey); ok {
			return records, interfaces.CacheStatusHit
		}
		status = interfaces.CacheStatusMiss
	}

	// Concurrent misses share one fan-out
	v, _, _ := e.group.Do(TokensCacheKey, func() (any, error) {
		return e.aggregate(ctx), nil
	})

	return v.([]interfaces.TokenRecord), status
}

func (e *Engine) aggregate(ctx context.Context) []interfaces.TokenRecord {
	start := time.Now()

	batches, fulfilled, err := e.fanOut(ctx, func(ctx context.Context, src interfaces.TokenSource) ([]interfaces.TokenRecord, error) {
		return src.FetchTrending(ctx)
	})
	if err != nil {
		log.Warnf("Aggregator: %v after %s, returning empty result", err, time.Since(start).Round(time.Millisecond))
		metrics.RecordAggregation("timeout", start, 0)
		return []interfaces.TokenRecord{}
	}

	records := Merge(batches...)
	if records == nil {
		records = []interfaces.TokenRecord{}
	}
	Enrich(context.WithoutCancel(ctx), records, e.history, e.now())

	if fulfilled == 0 {
		log.Warnf("Aggregator: no source fulfilled, not caching")
		metrics.RecordAggregation("outage", start, 0)
		return records
	}

	cache.SetJSON(context.WithoutCancel(ctx), e.store, TokensCacheKey, records, e.config.CacheTTL)
	metrics.RecordAggregation("success", start, len(records))
	log.Debugf("Aggregator: merged %d tokens from %d/%d sources in %s",
		len(records), fulfilled, len(e.sources), time.Since(start).Round(time.Millisecond))

	return records
}

type settled struct {
	index   int
	records []interfaces.TokenRecord
	err     error
}

// fanOut calls op on every source concurrently. Each outcome is settled on its
// own so one failure never discards another source's records. Batches are
// returned in source order. If the deadline expires first the error is
// ErrAggregationTimeout and nothing is returned.
func (e *Engine) fanOut(parent context.Context, op func(ctx context.Context, src interfaces.TokenSource) ([]interfaces.TokenRecord, error)) ([][]interfaces.TokenRecord, int, error) {
	// The fan-out may serve several callers; it stops on its own deadline only
	ctx := context.WithoutCancel(parent)
	if e.config.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Deadline)
		defer cancel()
	}

	done := make(chan settled, len(e.sources))
	for i, src := range e.sources {
		go func() {
			srcCtx := ctx
			if e.config.SourceTimeout > 0 {
				var cancel context.CancelFunc
				srcCtx, cancel = context.WithTimeout(ctx, e.config.SourceTimeout)
				defer cancel()
			}

			records, err := op(srcCtx, src)
			done <- settled{index: i, records: records, err: err}
		}()
	}

	batches := make([][]interfaces.TokenRecord, len(e.sources))
	fulfilled := 0

	for pending := len(e.sources); pending > 0; pending-- {
		select {
		case s := <-done:
			name := e.sources[s.index].Name()
			e.recordOutcome(name, s.records, s.err)
			if s.err != nil {
				log.Warnf("Aggregator: source %s failed: %v", name, s.err)
				continue
			}
			batches[s.index] = s.records
			fulfilled++
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, 0, ErrAggregationTimeout
			}
			return nil, 0, ctx.Err()
		}
	}

	return batches, fulfilled, nil
}

func (e *Engine) recordOutcome(name string, records []interfaces.TokenRecord, err error) {
	metrics.RecordSourceOutcome(name, err == nil)

	e.mu.Lock()
	defer e.mu.Unlock()

	status := e.statuses[name]
	status.Name = name
	if err != nil {
		status.Healthy = false
		status.LastError = err.Error()
		e.statuses[name] = status
		return
	}
	status.Healthy = true
	status.Records = len(records)
	status.LastError = ""
	status.LastSuccess = e.now()
	e.statuses[name] = status
}

// Search returns cached tokens whose name, ticker or address contains query.
// Adapters are only queried when no aggregate is available at all.
func (e *Engine) Search(ctx context.Context, query string) []interfaces.TokenRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return []interfaces.TokenRecord{}
	}

	if records := e.GetAll(ctx, true); len(records) > 0 {
		matches := Match(records, query)
		if matches == nil {
			matches = []interfaces.TokenRecord{}
		}
		return matches
	}

	return e.searchSources(ctx, query)
}

func (e *Engine) searchSources(ctx context.Context, query string) []interfaces.TokenRecord {
	key := searchCachePrefix + strings.ToLower(query)
	if records, ok := cache.GetJSON[[]interfaces.TokenRecord](ctx, e.store, key); ok {
		return records
	}

	v, _, _ := e.group.Do(key, func() (any, error) {
		batches, fulfilled, err := e.fanOut(ctx, func(ctx context.Context, src interfaces.TokenSource) ([]interfaces.TokenRecord, error) {
			return src.Search(ctx, query)
		})
		if err != nil {
			log.Warnf("Aggregator: search %q: %v", query, err)
			return []interfaces.TokenRecord{}, nil
		}

		records := Merge(batches...)
		if records == nil {
			records = []interfaces.TokenRecord{}
		}
		if fulfilled > 0 {
			cache.SetJSON(context.WithoutCancel(ctx), e.store, key, records, e.config.CacheTTL)
		}
		return records, nil
	})

	return v.([]interfaces.TokenRecord)
}

// InvalidateCache removes merged results. Adapter caches are left alone.
// Returns the number of keys removed.
func (e *Engine) InvalidateCache(ctx context.Context) int {
	keys := e.store.Keys(ctx, invalidatePattern)
	e.store.Delete(ctx, keys...)
	log.Printf("Aggregator: invalidated %d cache keys", len(keys))
	return len(keys)
}

// SourceStatuses returns the latest outcome per source in configured order
func (e *Engine) SourceStatuses() []SourceStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]SourceStatus, 0, len(e.sources))
	for _, src := range e.sources {
		status := e.statuses[src.Name()]
		if !status.Healthy && status.LastError == "" {
			status.Healthy = src.Healthy()
		}
		out = append(out, status)
	}
	return out
}
