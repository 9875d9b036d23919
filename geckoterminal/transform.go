package geckoterminal

import (
	"strings"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/sources_common"
)

// transformPools converts pools into token records keyed by base token.
// The first pool seen for a base token wins.
func transformPools(response PoolsResponse, limit int, now int64) []interfaces.TokenRecord {
	tokens := make(map[string]TokenAttributes, len(response.Included))
	for _, inc := range response.Included {
		if inc.Type == "token" {
			tokens[inc.ID] = inc.Attributes
		}
	}

	records := make([]interfaces.TokenRecord, 0, len(response.Data))
	seen := make(map[string]struct{}, len(response.Data))

	for _, pool := range response.Data {
		record, ok := transformPool(pool, tokens, now)
		if !ok {
			continue
		}
		if _, dup := seen[record.Address]; dup {
			continue
		}
		seen[record.Address] = struct{}{}

		records = append(records, record)
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	return records
}

func transformPool(pool Pool, tokens map[string]TokenAttributes, now int64) (interfaces.TokenRecord, bool) {
	base := pool.Relationships.BaseToken.Data
	if base == nil || base.ID == "" {
		return interfaces.TokenRecord{}, false
	}

	token, hasToken := tokens[base.ID]
	address := token.Address
	if address == "" {
		address = addressFromID(base.ID)
	}
	address = interfaces.CanonicalAddress(address)
	if address == "" {
		return interfaces.TokenRecord{}, false
	}

	name, ticker := token.Name, token.Symbol
	if !hasToken || name == "" {
		name = baseNameFromPool(pool.Attributes.Name)
	}
	if ticker == "" {
		ticker = baseNameFromPool(pool.Attributes.Name)
	}

	attrs := pool.Attributes
	record := interfaces.TokenRecord{
		Address:     address,
		Name:        name,
		Ticker:      ticker,
		Price:       sources_common.ParseDecimal(deref(attrs.BaseTokenPriceUsd)),
		Liquidity:   sources_common.ParseDecimal(deref(attrs.ReserveInUsd)),
		Protocol:    interfaces.UnknownProtocol,
		LastUpdated: now,
		Source:      config.SourceGeckoTerminal,
	}

	record.MarketCap = sources_common.ParseDecimal(deref(attrs.MarketCapUsd))
	if record.MarketCap == 0 {
		record.MarketCap = sources_common.ParseDecimal(deref(attrs.FdvUsd))
	}

	record.Volume1h = sources_common.ParseOptionalDecimal(attrs.VolumeUsd.H1)
	record.Volume24h = sources_common.ParseOptionalDecimal(attrs.VolumeUsd.H24)
	record.Volume = interfaces.Value(record.Volume24h)

	record.PriceChange1h = sources_common.ParseOptionalDecimal(attrs.PriceChangePercentage.H1)
	record.PriceChange24h = sources_common.ParseOptionalDecimal(attrs.PriceChangePercentage.H24)

	if trades, ok := attrs.Transactions["h24"]; ok {
		record.TransactionCount = trades.Buys + trades.Sells
	}

	if dex := pool.Relationships.Dex.Data; dex != nil && dex.ID != "" {
		record.Protocol = dex.ID
	}

	return record, true
}

// addressFromID strips the "<network>_" prefix of a resource id
func addressFromID(id string) string {
	if i := strings.LastIndex(id, "_"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// baseNameFromPool takes "BONK / SOL" and returns "BONK"
func baseNameFromPool(poolName string) string {
	base, _, _ := strings.Cut(poolName, "/")
	return strings.TrimSpace(base)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
