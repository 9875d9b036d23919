package geckoterminal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/token-aggregator/cache"
	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/retry"
	"github.com/status-im/token-aggregator/sources_common"
)

const poolsFixture = `{
  "data": [
    {
      "id": "solana_POOL1",
      "type": "pool",
      "attributes": {
        "name": "BONK / SOL",
        "address": "POOL1",
        "base_token_price_usd": "0.0000215",
        "fdv_usd": "1500000.5",
        "market_cap_usd": null,
        "reserve_in_usd": "250000.75",
        "price_change_percentage": {"m5": "0.1", "h1": "2.5", "h6": "3", "h24": "-4.75"},
        "volume_usd": {"m5": "10", "h1": "1200.5", "h6": "5000", "h24": "48000"},
        "transactions": {"h1": {"buys": 5, "sells": 6}, "h24": {"buys": 300, "sells": 250}}
      },
      "relationships": {
        "base_token": {"data": {"id": "solana_BonkMintAAA", "type": "token"}},
        "quote_token": {"data": {"id": "solana_So11111111111111111111111111111111111111112", "type": "token"}},
        "dex": {"data": {"id": "raydium", "type": "dex"}}
      }
    },
    {
      "id": "solana_POOL2",
      "type": "pool",
      "attributes": {
        "name": "WIF / USDC",
        "address": "POOL2",
        "base_token_price_usd": "2.1",
        "market_cap_usd": "2100000000",
        "volume_usd": {"h24": "900"}
      },
      "relationships": {
        "base_token": {"data": {"id": "solana_WifMintBBB", "type": "token"}},
        "dex": {"data": null}
      }
    },
    {
      "id": "solana_POOL3",
      "type": "pool",
      "attributes": {"name": "BONK / USDC", "base_token_price_usd": "0.00002"},
      "relationships": {"base_token": {"data": {"id": "solana_BonkMintAAA", "type": "token"}}}
    },
    {
      "id": "solana_POOL4",
      "type": "pool",
      "attributes": {"name": "orphan"},
      "relationships": {}
    }
  ],
  "included": [
    {"id": "solana_BonkMintAAA", "type": "token", "attributes": {"address": "BonkMintAAA", "name": "Bonk", "symbol": "BONK"}}
  ]
}`

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cacheCfg := cache.DefaultCacheConfig()
	cacheCfg.Redis.Enabled = false
	store := cache.NewService(cacheCfg)
	t.Cleanup(store.Stop)

	cfg := config.SourceConfig{
		Enabled:            true,
		BaseURL:            server.URL,
		TTL:                time.Minute,
		MaxResults:         10,
		ExpandedMaxResults: 20,
		Network:            "solana",
	}

	return New(cfg, sources_common.Deps{
		Store: store,
		Retry: retry.Options{MaxAttempts: 1},
	})
}

func TestService_FetchTrending(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/networks/solana/trending_pools", r.URL.Path)
		assert.Equal(t, "base_token,dex", r.URL.Query().Get("include"))
		w.Write([]byte(poolsFixture))
	})

	records, err := service.FetchTrending(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	bonk := records[0]
	assert.Equal(t, "bonkmintaaa", bonk.Address)
	assert.Equal(t, "Bonk", bonk.Name)
	assert.Equal(t, "BONK", bonk.Ticker)
	assert.Equal(t, 0.0000215, bonk.Price)
	assert.Equal(t, 1500000.5, bonk.MarketCap)
	assert.Equal(t, 250000.75, bonk.Liquidity)
	assert.Equal(t, 48000.0, bonk.Volume)
	assert.Equal(t, 1200.5, interfaces.Value(bonk.Volume1h))
	assert.Equal(t, 2.5, interfaces.Value(bonk.PriceChange1h))
	assert.Equal(t, -4.75, interfaces.Value(bonk.PriceChange24h))
	assert.Equal(t, int64(550), bonk.TransactionCount)
	assert.Equal(t, "raydium", bonk.Protocol)
	assert.Equal(t, config.SourceGeckoTerminal, bonk.Source)

	// Without an included token the address comes from the relationship id
	wif := records[1]
	assert.Equal(t, "wifmintbbb", wif.Address)
	assert.Equal(t, "WIF", wif.Name)
	assert.Equal(t, "WIF", wif.Ticker)
	assert.Equal(t, 2100000000.0, wif.MarketCap)
	assert.Equal(t, interfaces.UnknownProtocol, wif.Protocol)
	assert.Nil(t, wif.PriceChange1h)
	assert.Zero(t, wif.TransactionCount)
}

func TestService_Search(t *testing.T) {
	var hits atomic.Int32
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/v2/search/pools", r.URL.Path)
		assert.Equal(t, "bonk", r.URL.Query().Get("query"))
		assert.Equal(t, "solana", r.URL.Query().Get("network"))
		w.Write([]byte(poolsFixture))
	})

	records, err := service.Search(context.Background(), "bonk")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = service.Search(context.Background(), "BONK")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "query is normalised in the cache key")
}

func TestService_UpstreamFailure(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	records, err := service.FetchTrending(context.Background())
	assert.Nil(t, records)
	assert.ErrorIs(t, err, sources_common.ErrUpstream)
	assert.False(t, service.Healthy())
}

func TestAddressFromID(t *testing.T) {
	assert.Equal(t, "abc", addressFromID("solana_abc"))
	assert.Equal(t, "0xdef", addressFromID("polygon_pos_0xdef"))
	assert.Equal(t, "plain", addressFromID("plain"))
}
