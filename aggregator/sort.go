package aggregator

import (
	"cmp"
	"slices"

	"github.com/status-im/token-aggregator/interfaces"
)

// Sort returns a copy of records ordered by spec. Records with equal keys
// keep their input order in both directions.
func Sort(records []interfaces.TokenRecord, spec interfaces.SortSpec) []interfaces.TokenRecord {
	period := spec.Period
	if period == "" {
		period = interfaces.Period24h
	}
	field := spec.Field
	if field == "" {
		field = interfaces.SortByVolume
	}

	key := sortKey(field, period)
	out := slices.Clone(records)

	slices.SortStableFunc(out, func(a, b interfaces.TokenRecord) int {
		if spec.Direction == interfaces.SortAsc {
			return cmp.Compare(key(a), key(b))
		}
		return cmp.Compare(key(b), key(a))
	})

	return out
}

func sortKey(field interfaces.SortField, period interfaces.TimePeriod) func(interfaces.TokenRecord) float64 {
	switch field {
	case interfaces.SortByPrice:
		return func(r interfaces.TokenRecord) float64 { return r.Price }
	case interfaces.SortByMarketCap:
		return func(r interfaces.TokenRecord) float64 { return r.MarketCap }
	case interfaces.SortByLiquidity:
		return func(r interfaces.TokenRecord) float64 { return r.Liquidity }
	case interfaces.SortByTransactionCount:
		return func(r interfaces.TokenRecord) float64 { return float64(r.TransactionCount) }
	case interfaces.SortByPriceChange:
		return func(r interfaces.TokenRecord) float64 { return ResolvePriceChange(r, period) }
	default:
		return func(r interfaces.TokenRecord) float64 { return ResolveVolume(r, period) }
	}
}
