package aggregator

import (
	"strings"

	"github.com/status-im/token-aggregator/interfaces"
)

// Merge combines batches into one record per canonical address, in order of
// first appearance. Field resolution does not depend on batch order except for
// first-wins fields (name, ticker, protocol, price).
func Merge(batches ...[]interfaces.TokenRecord) []interfaces.TokenRecord {
	index := make(map[string]int)
	var merged []interfaces.TokenRecord

	for _, batch := range batches {
		for _, record := range batch {
			address := interfaces.CanonicalAddress(record.Address)
			if address == "" {
				continue
			}

			if i, ok := index[address]; ok {
				mergeInto(&merged[i], record)
				continue
			}

			seed := record.Clone()
			seed.Address = address
			seed.Source = joinSources(nil, record.Sources())
			index[address] = len(merged)
			merged = append(merged, seed)
		}
	}

	return merged
}

func mergeInto(dst *interfaces.TokenRecord, src interfaces.TokenRecord) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.Ticker == "" {
		dst.Ticker = src.Ticker
	}
	if dst.Price == 0 {
		dst.Price = src.Price
	}

	dst.MarketCap = max(dst.MarketCap, src.MarketCap)
	dst.Volume = max(dst.Volume, src.Volume)
	dst.Liquidity = max(dst.Liquidity, src.Liquidity)
	dst.TransactionCount = max(dst.TransactionCount, src.TransactionCount)
	dst.LastUpdated = max(dst.LastUpdated, src.LastUpdated)

	dst.Volume1h = maxOptional(dst.Volume1h, src.Volume1h)
	dst.Volume24h = maxOptional(dst.Volume24h, src.Volume24h)
	dst.Volume7d = maxOptional(dst.Volume7d, src.Volume7d)

	dst.PriceChange1h = preferNonZero(dst.PriceChange1h, src.PriceChange1h)
	dst.PriceChange24h = preferNonZero(dst.PriceChange24h, src.PriceChange24h)
	dst.PriceChange7d = preferNonZero(dst.PriceChange7d, src.PriceChange7d)

	if !knownProtocol(dst.Protocol) && src.Protocol != "" {
		if knownProtocol(src.Protocol) || dst.Protocol == "" {
			dst.Protocol = src.Protocol
		}
	}

	dst.Source = joinSources(dst.Sources(), src.Sources())
}

func maxOptional(a, b *float64) *float64 {
	switch {
	case b == nil:
		return a
	case a == nil || *b > *a:
		return interfaces.Float(*b)
	}
	return a
}

// preferNonZero keeps a real reading over a zero some sources report when
// they cannot compute the change
func preferNonZero(current, candidate *float64) *float64 {
	if candidate == nil {
		return current
	}
	if current == nil || (*current == 0 && *candidate != 0) {
		return interfaces.Float(*candidate)
	}
	return current
}

func knownProtocol(protocol string) bool {
	return protocol != "" && protocol != interfaces.UnknownProtocol
}

// joinSources appends tags not yet present, preserving first-seen order
func joinSources(existing, incoming []string) string {
	tags := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, cap(tags))

	for _, tag := range append(existing, incoming...) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	return strings.Join(tags, ",")
}
