package interfaces

import "fmt"

// TimePeriod selects which time-window variant of volume and price change is used
type TimePeriod string

const (
	Period1h  TimePeriod = "1h"
	Period24h TimePeriod = "24h"
	Period7d  TimePeriod = "7d"
)

// ParseTimePeriod parses a period string, empty means 24h
func ParseTimePeriod(s string) (TimePeriod, error) {
	switch TimePeriod(s) {
	case "":
		return Period24h, nil
	case Period1h, Period24h, Period7d:
		return TimePeriod(s), nil
	}
	return "", fmt.Errorf("invalid time period %q, expected one of 1h, 24h, 7d", s)
}

// SortField is a field tokens can be ordered by
type SortField string

const (
	SortByPrice            SortField = "price"
	SortByMarketCap        SortField = "market_cap"
	SortByVolume           SortField = "volume"
	SortByLiquidity        SortField = "liquidity"
	SortByTransactionCount SortField = "transaction_count"
	SortByPriceChange      SortField = "price_change"
)

// ParseSortField parses a sort field string, empty means volume
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case "":
		return SortByVolume, nil
	case SortByPrice, SortByMarketCap, SortByVolume, SortByLiquidity, SortByTransactionCount, SortByPriceChange:
		return SortField(s), nil
	}
	return "", fmt.Errorf("invalid sort field %q", s)
}

// SortDirection is either ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection parses a direction string, empty means descending
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case "":
		return SortDesc, nil
	case SortAsc, SortDesc:
		return SortDirection(s), nil
	}
	return "", fmt.Errorf("invalid sort direction %q, expected asc or desc", s)
}

// FilterSpec narrows the merged token list. Nil bounds are inactive.
type FilterSpec struct {
	Period       TimePeriod `json:"period"`
	MinVolume    *float64   `json:"min_volume,omitempty"`
	MaxVolume    *float64   `json:"max_volume,omitempty"`
	MinMarketCap *float64   `json:"min_market_cap,omitempty"`
	MaxMarketCap *float64   `json:"max_market_cap,omitempty"`
	// Protocol is a case-insensitive substring match, empty is inactive
	Protocol string `json:"protocol,omitempty"`
}

// SortSpec orders the merged token list
type SortSpec struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
	Period    TimePeriod    `json:"period"`
}
