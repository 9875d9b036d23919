package interfaces

import "strings"

// UnknownProtocol is the placeholder some sources report when the venue is not known
const UnknownProtocol = "Unknown"

// TokenRecord is the common token market data shape every source is transformed into
type TokenRecord struct {
	// Address is the token identity, lower-cased on ingestion
	Address string `json:"address"`
	Name    string `json:"name"`
	Ticker  string `json:"ticker"`

	// Price in USD
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`

	// Volume is the base volume figure reported by the source (usually 24h)
	Volume    float64  `json:"volume"`
	Volume1h  *float64 `json:"volume_1h,omitempty"`
	Volume24h *float64 `json:"volume_24h,omitempty"`
	Volume7d  *float64 `json:"volume_7d,omitempty"`

	Liquidity        float64 `json:"liquidity"`
	TransactionCount int64   `json:"transaction_count"`

	PriceChange1h  *float64 `json:"price_change_1h,omitempty"`
	PriceChange24h *float64 `json:"price_change_24h,omitempty"`
	PriceChange7d  *float64 `json:"price_change_7d,omitempty"`

	Protocol string `json:"protocol"`

	// LastUpdated is a unix timestamp in milliseconds
	LastUpdated int64 `json:"last_updated"`

	// Source is the comma-joined list of contributing source tags
	Source string `json:"source"`
}

// CanonicalAddress returns the identity key used for deduplication
func CanonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Float returns a pointer to v, used for optional numeric fields
func Float(v float64) *float64 {
	return &v
}

// Value dereferences an optional numeric field, treating nil as zero
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Sources splits the Source field into individual source tags
func (r TokenRecord) Sources() []string {
	if r.Source == "" {
		return nil
	}
	return strings.Split(r.Source, ",")
}

// Clone returns a deep copy of the record so optional fields are not shared
func (r TokenRecord) Clone() TokenRecord {
	c := r
	c.Volume1h = clonePtr(r.Volume1h)
	c.Volume24h = clonePtr(r.Volume24h)
	c.Volume7d = clonePtr(r.Volume7d)
	c.PriceChange1h = clonePtr(r.PriceChange1h)
	c.PriceChange24h = clonePtr(r.PriceChange24h)
	c.PriceChange7d = clonePtr(r.PriceChange7d)
	return c
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
