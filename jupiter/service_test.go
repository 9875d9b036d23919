package jupiter

import (
	"context"
	"net/http"
	"net/http/httptest"
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

const (
	bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

const tokensFixture = `[
  {
    "id": "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
    "name": "Bonk",
    "symbol": "Bonk",
    "usdPrice": 0.0000215,
    "mcap": 1600000000,
    "fdv": 1700000000,
    "liquidity": 9000000,
    "launchpad": "",
    "updatedAt": "2025-06-01T12:00:00Z",
    "stats1h": {"priceChange": 0.5, "buyVolume": 1000, "sellVolume": 500, "numBuys": 10, "numSells": 5},
    "stats24h": {"priceChange": -2.5, "buyVolume": 20000, "sellVolume": 10000, "numBuys": 400, "numSells": 350},
    "stats7d": {"priceChange": 15, "buyVolume": 100000, "sellVolume": 90000}
  },
  {"id": "not-a-mint", "name": "Broken", "symbol": "BRK", "usdPrice": 1},
  {"id": "abc", "name": "Short", "symbol": "SHT", "usdPrice": 1},
  {
    "id": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
    "name": "USD Coin",
    "symbol": "USDC",
    "usdPrice": 1,
    "fdv": 5000000000,
    "launchpad": "met-dbc",
    "updatedAt": "garbage"
  }
]`

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
		MaxResults:         50,
		ExpandedMaxResults: 100,
		Interval:           "24h",
	}

	return New(cfg, sources_common.Deps{
		Store: store,
		Retry: retry.Options{MaxAttempts: 1},
	})
}

func TestService_FetchTrending(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/v2/toptrending/24h", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(tokensFixture))
	})

	records, err := service.FetchTrending(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2, "invalid mints are dropped")

	bonk := records[0]
	assert.Equal(t, interfaces.CanonicalAddress(bonkMint), bonk.Address)
	assert.Equal(t, "Bonk", bonk.Name)
	assert.Equal(t, 0.0000215, bonk.Price)
	assert.Equal(t, 1600000000.0, bonk.MarketCap)
	assert.Equal(t, 9000000.0, bonk.Liquidity)
	assert.Equal(t, 1500.0, interfaces.Value(bonk.Volume1h))
	assert.Equal(t, 30000.0, interfaces.Value(bonk.Volume24h))
	assert.Equal(t, 190000.0, interfaces.Value(bonk.Volume7d))
	assert.Equal(t, 30000.0, bonk.Volume)
	assert.Equal(t, 0.5, interfaces.Value(bonk.PriceChange1h))
	assert.Equal(t, -2.5, interfaces.Value(bonk.PriceChange24h))
	assert.Equal(t, 15.0, interfaces.Value(bonk.PriceChange7d))
	assert.Equal(t, int64(750), bonk.TransactionCount)
	assert.Equal(t, interfaces.UnknownProtocol, bonk.Protocol)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli(), bonk.LastUpdated)
	assert.Equal(t, config.SourceJupiter, bonk.Source)

	usdc := records[1]
	assert.Equal(t, interfaces.CanonicalAddress(usdcMint), usdc.Address)
	assert.Equal(t, 5000000000.0, usdc.MarketCap)
	assert.Equal(t, "met-dbc", usdc.Protocol)
	assert.Nil(t, usdc.Volume24h)
	assert.Nil(t, usdc.PriceChange24h)
	assert.NotZero(t, usdc.LastUpdated)
}

func TestService_Search(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/v2/search", r.URL.Path)
		assert.Equal(t, "bonk", r.URL.Query().Get("query"))
		w.Write([]byte(tokensFixture))
	})

	records, err := service.Search(context.Background(), "bonk")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.True(t, service.Healthy())
}

func TestService_UpstreamFailure(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	records, err := service.FetchTrending(context.Background())
	assert.Nil(t, records)
	assert.ErrorIs(t, err, sources_common.ErrUpstream)
}

func TestIsValidMint(t *testing.T) {
	assert.True(t, isValidMint(bonkMint))
	assert.True(t, isValidMint("So11111111111111111111111111111111111111112"))
	assert.False(t, isValidMint("not-a-mint"))
	assert.False(t, isValidMint("abc"))
	assert.False(t, isValidMint(""))
	// 44 characters but 33 bytes once decoded
	assert.False(t, isValidMint("JUPyiwrYJFskUPiHa7hkeR8VbtGeVwTeRqZY1pcKk6Ms"))
}
