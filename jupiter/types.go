package jupiter

// Token is one entry of the tokens v2 API
type Token struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Icon        string   `json:"icon"`
	Decimals    int      `json:"decimals"`
	UsdPrice    *float64 `json:"usdPrice"`
	Mcap        *float64 `json:"mcap"`
	Fdv         *float64 `json:"fdv"`
	Liquidity   *float64 `json:"liquidity"`
	HolderCount int64    `json:"holderCount"`
	Launchpad   string   `json:"launchpad"`
	IsVerified  bool     `json:"isVerified"`
	Tags        []string `json:"tags"`
	UpdatedAt   string   `json:"updatedAt"`

	Stats1h  *Stats `json:"stats1h"`
	Stats24h *Stats `json:"stats24h"`
	Stats7d  *Stats `json:"stats7d"`
}

// Stats aggregates trading activity over one window
type Stats struct {
	PriceChange *float64 `json:"priceChange"`
	BuyVolume   *float64 `json:"buyVolume"`
	SellVolume  *float64 `json:"sellVolume"`
	NumBuys     int64    `json:"numBuys"`
	NumSells    int64    `json:"numSells"`
}

// volume returns buy plus sell volume, nil when neither is reported
func (s *Stats) volume() *float64 {
	if s == nil || (s.BuyVolume == nil && s.SellVolume == nil) {
		return nil
	}
	total := 0.0
	if s.BuyVolume != nil {
		total += *s.BuyVolume
	}
	if s.SellVolume != nil {
		total += *s.SellVolume
	}
	return &total
}

func (s *Stats) priceChange() *float64 {
	if s == nil {
		return nil
	}
	return s.PriceChange
}

func (s *Stats) trades() int64 {
	if s == nil {
		return 0
	}
	return s.NumBuys + s.NumSells
}
