package geckoterminal

import (
	"context"
	"strconv"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/sources_common"
)

// Service implements interfaces.TokenSource for GeckoTerminal
type Service struct {
	config  config.SourceConfig
	client  *Client
	fetcher *sources_common.Fetcher
	mode    *sources_common.DiscoveryMode
}

var _ interfaces.TokenSource = (*Service)(nil)

// NewService creates a new GeckoTerminal source
func NewService(cfg config.SourceConfig, client *Client, fetcher *sources_common.Fetcher, mode *sources_common.DiscoveryMode) *Service {
	return &Service{
		config:  cfg,
		client:  client,
		fetcher: fetcher,
		mode:    mode,
	}
}

// New wires a GeckoTerminal source from configuration and shared deps
func New(cfg config.SourceConfig, deps sources_common.Deps) *Service {
	httpClient, fetcher := deps.Pipeline(config.SourceGeckoTerminal, "GeckoTerminal", cfg)
	return NewService(cfg, NewClient(cfg.BaseURL, httpClient), fetcher, deps.Mode)
}

// Name implements interfaces.TokenSource
func (s *Service) Name() string {
	return config.SourceGeckoTerminal
}

// FetchTrending returns the trending pools of the configured network
func (s *Service) FetchTrending(ctx context.Context) ([]interfaces.TokenRecord, error) {
	limit := s.config.ResultCap(s.mode.Expanded())
	key := sources_common.CacheKey(s.Name(), "trending", s.config.Network, strconv.Itoa(limit))

	return s.fetcher.Fetch(ctx, key, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		response, err := s.client.TrendingPools(ctx, s.config.Network)
		if err != nil {
			return nil, err
		}
		return transformPools(response, limit, sources_common.NowMillis()), nil
	})
}

// Search implements interfaces.TokenSource
func (s *Service) Search(ctx context.Context, query string) ([]interfaces.TokenRecord, error) {
	limit := s.config.ResultCap(s.mode.Expanded())
	key := sources_common.CacheKey(s.Name(), "search", s.config.Network, query, strconv.Itoa(limit))

	return s.fetcher.Fetch(ctx, key, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		response, err := s.client.SearchPools(ctx, query, s.config.Network)
		if err != nil {
			return nil, err
		}
		return transformPools(response, limit, sources_common.NowMillis()), nil
	})
}

// Healthy implements interfaces.TokenSource
func (s *Service) Healthy() bool {
	return s.fetcher.Healthy()
}
