package jupiter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/status-im/token-aggregator/sources_common"
)

const (
	topTrendingPath = "/tokens/v2/toptrending/%s"
	searchPath      = "/tokens/v2/search"
)

// Client talks to the Jupiter tokens API
type Client struct {
	baseURL    string
	httpClient *sources_common.HTTPClient
}

// NewClient creates a new Jupiter client
func NewClient(baseURL string, httpClient *sources_common.HTTPClient) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// TopTrending returns up to limit trending tokens for interval (5m, 1h, 6h, 24h)
func (c *Client) TopTrending(ctx context.Context, interval string, limit int) ([]Token, error) {
	path := fmt.Sprintf(topTrendingPath, sources_common.PathEscape(interval))
	rb := sources_common.NewRequestBuilder(c.baseURL, path)
	if limit > 0 {
		rb.With("limit", strconv.Itoa(limit))
	}
	return c.get(ctx, rb)
}

// Search returns tokens matching query by name, symbol or mint
func (c *Client) Search(ctx context.Context, query string) ([]Token, error) {
	return c.get(ctx, sources_common.NewRequestBuilder(c.baseURL, searchPath).With("query", query))
}

func (c *Client) get(ctx context.Context, rb *sources_common.RequestBuilder) ([]Token, error) {
	req, err := rb.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	var tokens []Token
	if _, err := c.httpClient.ExecuteJSON(ctx, req, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
