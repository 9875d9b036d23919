package dexscreener

// SearchResponse is the payload of /latest/dex/search
type SearchResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair is one trading pair. Prices are sent as strings, most amounts as numbers.
type Pair struct {
	ChainID     string       `json:"chainId"`
	DexID       string       `json:"dexId"`
	URL         string       `json:"url"`
	PairAddress string       `json:"pairAddress"`
	BaseToken   Token        `json:"baseToken"`
	QuoteToken  Token        `json:"quoteToken"`
	PriceNative string       `json:"priceNative"`
	PriceUsd    *string      `json:"priceUsd"`
	Txns        Transactions `json:"txns"`
	Volume      Windows      `json:"volume"`
	PriceChange Windows      `json:"priceChange"`
	Liquidity   *Liquidity   `json:"liquidity"`
	Fdv         *float64     `json:"fdv"`
	MarketCap   *float64     `json:"marketCap"`
	CreatedAt   int64        `json:"pairCreatedAt"`
}

// Token identifies one side of a pair
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Windows holds per-window figures; absent windows stay nil
type Windows struct {
	M5  *float64 `json:"m5"`
	H1  *float64 `json:"h1"`
	H6  *float64 `json:"h6"`
	H24 *float64 `json:"h24"`
}

// BuysSells counts trades in one window
type BuysSells struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

// Transactions holds trade counts per window
type Transactions struct {
	M5  *BuysSells `json:"m5"`
	H1  *BuysSells `json:"h1"`
	H6  *BuysSells `json:"h6"`
	H24 *BuysSells `json:"h24"`
}

// Liquidity of the pool
type Liquidity struct {
	Usd   *float64 `json:"usd"`
	Base  float64  `json:"base"`
	Quote float64  `json:"quote"`
}
