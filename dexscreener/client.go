package dexscreener

import (
	"context"
	"fmt"

	"github.com/status-im/token-aggregator/sources_common"
)

// searchPath is the only endpoint needed: trending is a search for the configured term
const searchPath = "/latest/dex/search"

// Client talks to the DexScreener API
type Client struct {
	baseURL    string
	httpClient *sources_common.HTTPClient
}

// NewClient creates a new DexScreener client
func NewClient(baseURL string, httpClient *sources_common.HTTPClient) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Search returns the pairs matching query
func (c *Client) Search(ctx context.Context, query string) ([]Pair, error) {
	req, err := sources_common.NewRequestBuilder(c.baseURL, searchPath).
		With("q", query).
		Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	var response SearchResponse
	if _, err := c.httpClient.ExecuteJSON(ctx, req, &response); err != nil {
		return nil, err
	}

	return response.Pairs, nil
}
