package core

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/aggregator"
	"github.com/status-im/token-aggregator/api"
	"github.com/status-im/token-aggregator/broadcast"
	"github.com/status-im/token-aggregator/cache"
	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/dexscreener"
	"github.com/status-im/token-aggregator/geckoterminal"
	"github.com/status-im/token-aggregator/history"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/jupiter"
	"github.com/status-im/token-aggregator/metrics"
	"github.com/status-im/token-aggregator/ratelimit"
	"github.com/status-im/token-aggregator/sources_common"
)

// Setup creates and registers all services
func Setup(ctx context.Context, cfg *config.Config) (*Registry, error) {
	registry := NewRegistry()

	cacheService := cache.NewService(cfg.Cache)
	registry.Register("cache", cacheService)

	// One limiter per upstream source for the whole process lifetime
	limiters := ratelimit.NewManager(cfg.Sources.RateLimits())
	registry.Register("ratelimit", limiters)

	mode := sources_common.NewDiscoveryMode(cfg.Sources.Expanded)
	deps := sources_common.Deps{
		Store:    cacheService,
		Limiters: limiters,
		Retry:    sources_common.RetryOptions(cfg.Sources.Retry),
		Mode:     mode,
	}

	sources, err := buildSources(cfg.Sources, deps)
	if err != nil {
		return nil, err
	}

	var (
		reader history.Reader
		store  *history.Store
	)
	if cfg.History.Enabled() {
		pool, err := history.NewPool(ctx, cfg.History.DatabaseURL)
		if err != nil {
			limiters.Stop()
			return nil, fmt.Errorf("history: %w", err)
		}
		if err := history.Migrate(ctx, pool); err != nil {
			pool.Close()
			limiters.Stop()
			return nil, fmt.Errorf("history: %w", err)
		}
		registry.Register("postgres", pool)

		store = history.NewStore(pool)
		reader = store
	} else {
		log.Printf("History: database_url not set, price snapshots disabled")
	}

	engine := aggregator.NewEngine(sources, cacheService, reader, aggregator.Config{
		Deadline:      cfg.Aggregator.Deadline,
		SourceTimeout: cfg.Aggregator.SourceTimeout,
		// The merged result is the expensive path
		CacheTTL: 2 * cfg.Cache.GetTTL(),
	})

	if store != nil {
		registry.Register("history-recorder", history.NewRecorder(engine, store, cfg.History.RecordInterval))
	}

	broadcaster := broadcast.NewService(engine, cfg.Broadcast)
	registry.Register("broadcast", broadcaster)

	server := api.New(cfg.Server.Port, cfg.Auth.APIKeys, api.Services{
		Tokens:      engine,
		Broadcaster: broadcaster,
		Discovery:   mode,
		Cache:       cacheService,
		Notifier:    metrics.NewPrometheusNotifier(),
	})
	registry.Register("api", server)

	return registry, nil
}

// buildSources creates the enabled providers in a fixed order, which is also
// the merge order of their records
func buildSources(cfg config.SourcesConfig, deps sources_common.Deps) ([]interfaces.TokenSource, error) {
	sources := make([]interfaces.TokenSource, 0, 3)

	for _, name := range cfg.EnabledNames() {
		switch name {
		case config.SourceDexScreener:
			sources = append(sources, dexscreener.New(cfg.DexScreener, deps))
		case config.SourceGeckoTerminal:
			sources = append(sources, geckoterminal.New(cfg.GeckoTerminal, deps))
		case config.SourceJupiter:
			sources = append(sources, jupiter.New(cfg.Jupiter, deps))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no upstream source enabled")
	}

	log.Printf("Core: %d upstream sources enabled: %v", len(sources), cfg.EnabledNames())
	return sources, nil
}
