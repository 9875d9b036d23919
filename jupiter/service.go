package jupiter

import (
	"context"
	"strconv"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/sources_common"
)

// Service implements interfaces.TokenSource for Jupiter
type Service struct {
	config  config.SourceConfig
	client  *Client
	fetcher *sources_common.Fetcher
	mode    *sources_common.DiscoveryMode
}

var _ interfaces.TokenSource = (*Service)(nil)

// NewService creates a new Jupiter source
func NewService(cfg config.SourceConfig, client *Client, fetcher *sources_common.Fetcher, mode *sources_common.DiscoveryMode) *Service {
	return &Service{
		config:  cfg,
		client:  client,
		fetcher: fetcher,
		mode:    mode,
	}
}

// New wires a Jupiter source from configuration and shared deps
func New(cfg config.SourceConfig, deps sources_common.Deps) *Service {
	httpClient, fetcher := deps.Pipeline(config.SourceJupiter, "Jupiter", cfg)
	return NewService(cfg, NewClient(cfg.BaseURL, httpClient), fetcher, deps.Mode)
}

// Name implements interfaces.TokenSource
func (s *Service) Name() string {
	return config.SourceJupiter
}

// FetchTrending returns the top trending tokens for the configured interval
func (s *Service) FetchTrending(ctx context.Context) ([]interfaces.TokenRecord, error) {
	limit := s.config.ResultCap(s.mode.Expanded())
	key := sources_common.CacheKey(s.Name(), "trending", s.config.Interval, strconv.Itoa(limit))

	return s.fetcher.Fetch(ctx, key, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		tokens, err := s.client.TopTrending(ctx, s.config.Interval, limit)
		if err != nil {
			return nil, err
		}
		return transformTokens(tokens, limit, sources_common.NowMillis()), nil
	})
}

// Search implements interfaces.TokenSource
func (s *Service) Search(ctx context.Context, query string) ([]interfaces.TokenRecord, error) {
	limit := s.config.ResultCap(s.mode.Expanded())
	key := sources_common.CacheKey(s.Name(), "search", query, strconv.Itoa(limit))

	return s.fetcher.Fetch(ctx, key, func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		tokens, err := s.client.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		return transformTokens(tokens, limit, sources_common.NowMillis()), nil
	})
}

// Healthy implements interfaces.TokenSource
func (s *Service) Healthy() bool {
	return s.fetcher.Healthy()
}
