package geckoterminal

import (
	"context"
	"fmt"

	"github.com/status-im/token-aggregator/sources_common"
)

const (
	trendingPoolsPath = "/api/v2/networks/%s/trending_pools"
	searchPoolsPath   = "/api/v2/search/pools"
	includeResources  = "base_token,dex"
)

// Client talks to the GeckoTerminal API
type Client struct {
	baseURL    string
	httpClient *sources_common.HTTPClient
}

// NewClient creates a new GeckoTerminal client
func NewClient(baseURL string, httpClient *sources_common.HTTPClient) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// TrendingPools returns the trending pools of network
func (c *Client) TrendingPools(ctx context.Context, network string) (PoolsResponse, error) {
	path := fmt.Sprintf(trendingPoolsPath, sources_common.PathEscape(network))
	return c.get(ctx, sources_common.NewRequestBuilder(c.baseURL, path).
		With("include", includeResources))
}

// SearchPools returns pools matching query, restricted to network when set
func (c *Client) SearchPools(ctx context.Context, query, network string) (PoolsResponse, error) {
	return c.get(ctx, sources_common.NewRequestBuilder(c.baseURL, searchPoolsPath).
		With("query", query).
		With("network", network).
		With("include", includeResources))
}

func (c *Client) get(ctx context.Context, rb *sources_common.RequestBuilder) (PoolsResponse, error) {
	var response PoolsResponse

	req, err := rb.WithHeader("Accept", "application/json;version=20230302").Build(ctx)
	if err != nil {
		return response, fmt.Errorf("failed to build request: %w", err)
	}

	if _, err := c.httpClient.ExecuteJSON(ctx, req, &response); err != nil {
		return response, err
	}
	return response, nil
}
