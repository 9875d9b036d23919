package geckoterminal

// PoolsResponse is the JSON:API envelope of pool listings
type PoolsResponse struct {
	Data     []Pool     `json:"data"`
	Included []Included `json:"included"`
}

// Pool is one pool resource
type Pool struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Attributes    PoolAttributes `json:"attributes"`
	Relationships Relationships  `json:"relationships"`
}

// PoolAttributes amounts are decimal strings; absent values are null
type PoolAttributes struct {
	Name                  string            `json:"name"`
	Address               string            `json:"address"`
	BaseTokenPriceUsd     *string           `json:"base_token_price_usd"`
	FdvUsd                *string           `json:"fdv_usd"`
	MarketCapUsd          *string           `json:"market_cap_usd"`
	ReserveInUsd          *string           `json:"reserve_in_usd"`
	PriceChangePercentage Windows           `json:"price_change_percentage"`
	VolumeUsd             Windows           `json:"volume_usd"`
	Transactions          map[string]Trades `json:"transactions"`
}

// Windows holds per-window decimal strings
type Windows struct {
	M5  *string `json:"m5"`
	H1  *string `json:"h1"`
	H6  *string `json:"h6"`
	H24 *string `json:"h24"`
}

// Trades counts buys and sells in one window
type Trades struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

// Relationships links a pool to its tokens and dex
type Relationships struct {
	BaseToken  Relationship `json:"base_token"`
	QuoteToken Relationship `json:"quote_token"`
	Dex        Relationship `json:"dex"`
}

// Relationship is a JSON:API resource identifier wrapper
type Relationship struct {
	Data *ResourceID `json:"data"`
}

// ResourceID identifies a resource, e.g. {"id":"solana_<address>","type":"token"}
type ResourceID struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Included is a side-loaded resource; only tokens are requested
type Included struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes TokenAttributes `json:"attributes"`
}

// TokenAttributes of an included token
type TokenAttributes struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}
