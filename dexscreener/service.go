package dexscreener

import (
	"context"
	"strconv"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/sources_common"
)

// Service implements interfaces.TokenSource for DexScreener
type Service struct {
	config  config.SourceConfig
	client  *Client
	fetcher *sources_common.Fetcher
	mode    *sources_common.DiscoveryMode
}

var _ interfaces.TokenSource = (*Service)(nil)

// NewService creates a new DexScreener source
func NewService(cfg config.SourceConfig, client *Client, fetcher *sources_common.Fetcher, mode *sources_common.DiscoveryMode) *Service {
	return &Service{
		config:  cfg,
		client:  client,
		fetcher: fetcher,
		mode:    mode,
	}
}

// Name implements interfaces.TokenSource
func (s *Service) Name() string {
	return config.SourceDexScreener
}

// FetchTrending searches for the configured trending term
func (s *Service) FetchTrending(ctx context.Context) ([]interfaces.TokenRecord, error) {
	limit := s.config.ResultCap(s.mode.Expanded())
	key := sources_common.CacheKey(s.Name(), "trending", s.config.TrendingQuery, strconv.Itoa(limit))

	return s.fetcher.Fetch(ctx, key, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		return s.search(ctx, s.config.TrendingQuery, limit)
	})
}

// Search implements interfaces.TokenSource
func (s *Service) Search(ctx context.Context, query string) ([]interfaces.TokenRecord, error) {
	limit := s.config.ResultCap(s.mode.Expanded())
	key := sources_common.CacheKey(s.Name(), "search", query, strconv.Itoa(limit))

	return s.fetcher.Fetch(ctx, key, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		return s.search(ctx, query, limit)
	})
}

func (s *Service) search(ctx context.Context, query string, limit int) ([]interfaces.TokenRecord, error) {
	pairs, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return transformPairs(pairs, limit, sources_common.NowMillis()), nil
}

// Healthy implements interfaces.TokenSource
func (s *Service) Healthy() bool {
	return s.fetcher.Healthy()
}

// New wires a DexScreener source from configuration and shared deps
func New(cfg config.SourceConfig, deps sources_common.Deps) *Service {
	httpClient, fetcher := deps.Pipeline(config.SourceDexScreener, "DexScreener", cfg)
	return NewService(cfg, NewClient(cfg.BaseURL, httpClient), fetcher, deps.Mode)
}
