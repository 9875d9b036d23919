package aggregator

import (
	"strings"

	"github.com/status-im/token-aggregator/interfaces"
)

// daysPerWeek scales a 24h figure to the 7d window when no 7d value is stored
const daysPerWeek = 7

// ResolveVolume returns the volume figure for period, falling back
// 1h -> 24h -> base. The 7d window uses the stored value or 24h x 7.
func ResolveVolume(r interfaces.TokenRecord, period interfaces.TimePeriod) float64 {
	switch period {
	case interfaces.Period1h:
		if r.Volume1h != nil {
			return *r.Volume1h
		}
	case interfaces.Period7d:
		if r.Volume7d != nil {
			return *r.Volume7d
		}
		return volume24h(r) * daysPerWeek
	}
	return volume24h(r)
}

func volume24h(r interfaces.TokenRecord) float64 {
	if r.Volume24h != nil {
		return *r.Volume24h
	}
	return r.Volume
}

// ResolvePriceChange returns the price change percentage for period.
// 1h and 7d fall back to the 24h reading.
func ResolvePriceChange(r interfaces.TokenRecord, period interfaces.TimePeriod) float64 {
	switch period {
	case interfaces.Period1h:
		if r.PriceChange1h != nil {
			return *r.PriceChange1h
		}
	case interfaces.Period7d:
		if r.PriceChange7d != nil {
			return *r.PriceChange7d
		}
	}
	return interfaces.Value(r.PriceChange24h)
}

// Filter returns the records satisfying every active predicate of spec.
// The input slice is not modified.
func Filter(records []interfaces.TokenRecord, spec interfaces.FilterSpec) []interfaces.TokenRecord {
	period := spec.Period
	if period == "" {
		period = interfaces.Period24h
	}
	protocol := strings.ToLower(strings.TrimSpace(spec.Protocol))

	out := make([]interfaces.TokenRecord, 0, len(records))
	for _, r := range records {
		volume := ResolveVolume(r, period)

		if !inRange(volume, spec.MinVolume, spec.MaxVolume) {
			continue
		}
		if !inRange(r.MarketCap, spec.MinMarketCap, spec.MaxMarketCap) {
			continue
		}
		if protocol != "" && !strings.Contains(strings.ToLower(r.Protocol), protocol) {
			continue
		}

		out = append(out, r)
	}

	return out
}

func inRange(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// Match returns records whose name, ticker or address contains query, case-insensitively
func Match(records []interfaces.TokenRecord, query string) []interfaces.TokenRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []interfaces.TokenRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Ticker), q) ||
			strings.Contains(strings.ToLower(r.Address), q) {
			out = append(out, r)
		}
	}
	return out
}
