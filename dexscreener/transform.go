package dexscreener

import (
	"strings"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/sources_common"
)

// transformPairs converts pairs into token records keyed by base token.
// The first pair seen for a base token wins since the API orders pairs by relevance.
func transformPairs(pairs []Pair, limit int, now int64) []interfaces.TokenRecord {
	records := make([]interfaces.TokenRecord, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))

	for _, pair := range pairs {
		address := interfaces.CanonicalAddress(pair.BaseToken.Address)
		if address == "" {
			continue
		}
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}

		records = append(records, transformPair(pair, address, now))
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	return records
}

func transformPair(pair Pair, address string, now int64) interfaces.TokenRecord {
	record := interfaces.TokenRecord{
		Address:     address,
		Name:        strings.TrimSpace(pair.BaseToken.Name),
		Ticker:      strings.TrimSpace(pair.BaseToken.Symbol),
		Price:       sources_common.ParseDecimal(deref(pair.PriceUsd)),
		Protocol:    pair.DexID,
		LastUpdated: now,
		Source:      config.SourceDexScreener,
	}

	if record.Protocol == "" {
		record.Protocol = interfaces.UnknownProtocol
	}

	switch {
	case pair.MarketCap != nil && *pair.MarketCap > 0:
		record.MarketCap = *pair.MarketCap
	case pair.Fdv != nil:
		record.MarketCap = *pair.Fdv
	}

	if pair.Liquidity != nil && pair.Liquidity.Usd != nil {
		record.Liquidity = *pair.Liquidity.Usd
	}

	record.Volume1h = pair.Volume.H1
	record.Volume24h = pair.Volume.H24
	record.Volume = interfaces.Value(pair.Volume.H24)

	record.PriceChange1h = pair.PriceChange.H1
	record.PriceChange24h = pair.PriceChange.H24

	if pair.Txns.H24 != nil {
		record.TransactionCount = pair.Txns.H24.Buys + pair.Txns.H24.Sells
	}

	return record
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
