package e2etest

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Mints shared by the fixtures. DexScreener and GeckoTerminal both report
// BONK so the merge path is exercised; JUP only comes from Jupiter.
const (
	MintSOL  = "So11111111111111111111111111111111111111112"
	MintBONK = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	MintJUP  = "JUPyiwrYJFskUPiHa7hkeR8VbtGeVwTeRqZY1pcKk6M"
)

// Upstream names as used in the fake's routing table
const (
	UpstreamDexScreener   = "dexscreener"
	UpstreamGeckoTerminal = "geckoterminal"
	UpstreamJupiter       = "jupiter"
)

// MockServer serves canned DexScreener, GeckoTerminal and Jupiter payloads
// from a single httptest server
type MockServer struct {
	server *httptest.Server

	mu       sync.RWMutex
	jupPrice float64
	jupVol   float64
	failing  map[string]bool
	requests map[string]int
}

// NewMockServer creates and starts the fake upstream
func NewMockServer() *MockServer {
	ms := &MockServer{
		jupPrice: 0.85,
		jupVol:   400000,
		failing:  make(map[string]bool),
		requests: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", ms.handleRequest)
	ms.server = httptest.NewServer(mux)

	return ms
}

// Close stops the fake upstream
func (ms *MockServer) Close() {
	if ms.server != nil {
		ms.server.Close()
	}
}

// GetURL returns the base URL every source is pointed at
func (ms *MockServer) GetURL() string {
	return ms.server.URL
}

// SetJupiterQuote changes the JUP price and 24h volume reported by Jupiter
func (ms *MockServer) SetJupiterQuote(price, volume float64) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.jupPrice = price
	ms.jupVol = volume
}

// SetFailing makes every request to upstream return 500
func (ms *MockServer) SetFailing(upstream string, failing bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.failing[upstream] = failing
}

// Requests returns how many requests upstream has received
func (ms *MockServer) Requests(upstream string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.requests[upstream]
}

func (ms *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	upstream, body := ms.route(r)
	if upstream == "" {
		log.Printf("Mock: unexpected request %s", r.URL.String())
		http.NotFound(w, r)
		return
	}

	ms.mu.Lock()
	ms.requests[upstream]++
	failing := ms.failing[upstream]
	ms.mu.Unlock()

	if failing {
		http.Error(w, `{"error":"upstream unavailable"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (ms *MockServer) route(r *http.Request) (string, string) {
	path := r.URL.Path
	query := strings.ToLower(r.URL.Query().Get("query"))

	switch {
	case path == "/latest/dex/search":
		if q := strings.ToLower(r.URL.Query().Get("q")); q != "solana" && !strings.Contains("bonk", q) {
			return UpstreamDexScreener, `{"schemaVersion":"1.0.0","pairs":[]}`
		}
		return UpstreamDexScreener, dexScreenerPairs()
	case strings.HasPrefix(path, "/api/v2/networks/") && strings.HasSuffix(path, "/trending_pools"):
		return UpstreamGeckoTerminal, geckoTerminalPools()
	case path == "/api/v2/search/pools":
		if !strings.Contains("bonk", query) {
			return UpstreamGeckoTerminal, `{"data":[],"included":[]}`
		}
		return UpstreamGeckoTerminal, geckoTerminalPools()
	case strings.HasPrefix(path, "/tokens/v2/toptrending/"):
		return UpstreamJupiter, ms.jupiterTokens()
	case path == "/tokens/v2/search":
		if !strings.Contains("jupiter", query) {
			return UpstreamJupiter, `[]`
		}
		return UpstreamJupiter, ms.jupiterTokens()
	}

	return "", ""
}

// dexScreenerPairs lists SOL and BONK. BONK appears twice: the second pair
// must be dropped in favour of the first.
func dexScreenerPairs() string {
	return fmt.Sprintf(`{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "solana",
      "dexId": "raydium",
      "pairAddress": "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2",
      "baseToken": {"address": "%[1]s", "name": "Wrapped SOL", "symbol": "SOL"},
      "quoteToken": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "name": "USD Coin", "symbol": "USDC"},
      "priceUsd": "150.25",
      "txns": {"h24": {"buys": 1200, "sells": 800}},
      "volume": {"h1": 50000, "h24": 1000000},
      "priceChange": {"h1": 0.5, "h24": 2.1},
      "liquidity": {"usd": 5000000},
      "marketCap": 70000000000
    },
    {
      "chainId": "solana",
      "dexId": "orca",
      "pairAddress": "Bzc9NZfMqkXR6fz1DBph7BDf9BroyEf6pnzESP7v5iiw",
      "baseToken": {"address": "%[2]s", "name": "Bonk", "symbol": "BONK"},
      "quoteToken": {"address": "%[1]s", "name": "Wrapped SOL", "symbol": "SOL"},
      "priceUsd": "0.000021",
      "txns": {"h24": {"buys": 300, "sells": 250}},
      "volume": {"h24": 250000},
      "priceChange": {"h24": -3.4},
      "liquidity": {"usd": 900000},
      "marketCap": 1500000000
    },
    {
      "chainId": "solana",
      "dexId": "meteora",
      "pairAddress": "6oFWm7KPLfxnwMb3z5xwBoXNSPP3JJyirAPqPSiVcnsp",
      "baseToken": {"address": "%[2]s", "name": "Bonk", "symbol": "BONK"},
      "quoteToken": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "name": "USD Coin", "symbol": "USDC"},
      "priceUsd": "0.000019",
      "volume": {"h24": 1000},
      "liquidity": {"usd": 1000}
    }
  ]
}`, MintSOL, MintBONK)
}

// geckoTerminalPools reports BONK with a larger 24h volume than DexScreener
func geckoTerminalPools() string {
	return fmt.Sprintf(`{
  "data": [
    {
      "id": "solana_Bzc9NZfMqkXR6fz1DBph7BDf9BroyEf6pnzESP7v5iiw",
      "type": "pool",
      "attributes": {
        "name": "BONK / SOL",
        "address": "Bzc9NZfMqkXR6fz1DBph7BDf9BroyEf6pnzESP7v5iiw",
        "base_token_price_usd": "0.0000205",
        "market_cap_usd": null,
        "fdv_usd": "1600000000",
        "reserve_in_usd": "950000",
        "price_change_percentage": {"h1": "0.8", "h24": "-3.1"},
        "volume_usd": {"h1": "12000", "h24": "310000"},
        "transactions": {"h24": {"buys": 320, "sells": 260}}
      },
      "relationships": {
        "base_token": {"data": {"id": "solana_%[1]s", "type": "token"}},
        "quote_token": {"data": {"id": "solana_%[2]s", "type": "token"}},
        "dex": {"data": {"id": "orca", "type": "dex"}}
      }
    }
  ],
  "included": [
    {
      "id": "solana_%[1]s",
      "type": "token",
      "attributes": {"address": "%[1]s", "name": "Bonk", "symbol": "BONK"}
    }
  ]
}`, MintBONK, MintSOL)
}

// jupiterTokens reports JUP plus one entry with an invalid mint that must be dropped
func (ms *MockServer) jupiterTokens() string {
	ms.mu.RLock()
	price := strconv.FormatFloat(ms.jupPrice, 'f', -1, 64)
	half := strconv.FormatFloat(ms.jupVol/2, 'f', -1, 64)
	ms.mu.RUnlock()

	return fmt.Sprintf(`[
  {
    "id": "%[1]s",
    "name": "Jupiter",
    "symbol": "JUP",
    "decimals": 6,
    "usdPrice": %[2]s,
    "mcap": 1150000000,
    "liquidity": 2000000,
    "launchpad": "met-dbc",
    "isVerified": true,
    "stats1h": {"priceChange": 0.2, "buyVolume": 9000, "sellVolume": 8000, "numBuys": 40, "numSells": 35},
    "stats24h": {"priceChange": 4.5, "buyVolume": %[3]s, "sellVolume": %[3]s, "numBuys": 900, "numSells": 700}
  },
  {
    "id": "not-a-mint",
    "name": "Broken",
    "symbol": "BRK",
    "usdPrice": 1
  }
]`, MintJUP, price, half)
}
