package jupiter

import (
	"strings"
	"time"

	"github.com/mr-tron/base58"
	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/interfaces"
)

// mintLength is the size of a Solana public key
const mintLength = 32

// isValidMint reports whether id is a base58 encoded 32 byte public key
func isValidMint(id string) bool {
	decoded, err := base58.Decode(id)
	return err == nil && len(decoded) == mintLength
}

// transformTokens converts tokens into records, dropping invalid mints and duplicates
func transformTokens(tokens []Token, limit int, now int64) []interfaces.TokenRecord {
	records := make([]interfaces.TokenRecord, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	dropped := 0

	for _, token := range tokens {
		if !isValidMint(token.ID) {
			dropped++
			continue
		}

		record := transformToken(token, now)
		if _, ok := seen[record.Address]; ok {
			continue
		}
		seen[record.Address] = struct{}{}

		records = append(records, record)
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	if dropped > 0 {
		log.Debugf("Jupiter: dropped %d tokens with invalid mint", dropped)
	}
	return records
}

func transformToken(token Token, now int64) interfaces.TokenRecord {
	record := interfaces.TokenRecord{
		Address:     interfaces.CanonicalAddress(token.ID),
		Name:        strings.TrimSpace(token.Name),
		Ticker:      strings.TrimSpace(token.Symbol),
		Price:       interfaces.Value(token.UsdPrice),
		Liquidity:   interfaces.Value(token.Liquidity),
		Protocol:    interfaces.UnknownProtocol,
		LastUpdated: updatedAtMillis(token.UpdatedAt, now),
		Source:      config.SourceJupiter,
	}

	if token.Launchpad != "" {
		record.Protocol = token.Launchpad
	}

	record.MarketCap = interfaces.Value(token.Mcap)
	if record.MarketCap == 0 {
		record.MarketCap = interfaces.Value(token.Fdv)
	}

	record.Volume1h = token.Stats1h.volume()
	record.Volume24h = token.Stats24h.volume()
	record.Volume7d = token.Stats7d.volume()
	record.Volume = interfaces.Value(record.Volume24h)

	record.PriceChange1h = token.Stats1h.priceChange()
	record.PriceChange24h = token.Stats24h.priceChange()
	record.PriceChange7d = token.Stats7d.priceChange()

	record.TransactionCount = token.Stats24h.trades()

	return record
}

// updatedAtMillis parses an RFC 3339 timestamp, falling back to now
func updatedAtMillis(updatedAt string, now int64) int64 {
	if updatedAt == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return now
	}
	return t.UnixMilli()
}
