package aggregator

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/history"
	"github.com/status-im/token-aggregator/interfaces"
)

// Enrich fills derived fields in place: the 7d volume approximation and,
// when reader has a snapshot from a week ago, the 7d price change.
func Enrich(ctx context.Context, records []interfaces.TokenRecord, reader history.Reader, now time.Time) {
	for i := range records {
		r := &records[i]
		if r.Volume7d == nil {
			if v := volume24h(*r); v > 0 {
				r.Volume7d = interfaces.Float(v * daysPerWeek)
			}
		}
	}

	if reader == nil || len(records) == 0 {
		return
	}

	addresses := make([]string, 0, len(records))
	for _, r := range records {
		if r.PriceChange7d == nil && r.Price > 0 {
			addresses = append(addresses, r.Address)
		}
	}
	if len(addresses) == 0 {
		return
	}

	weekAgo := history.Day(now).AddDate(0, 0, -daysPerWeek)
	prices, err := reader.PricesOn(ctx, weekAgo, addresses)
	if err != nil {
		log.Warnf("Aggregator: failed to load price history: %v", err)
		return
	}

	for i := range records {
		r := &records[i]
		old, ok := prices[r.Address]
		if !ok || old <= 0 || r.PriceChange7d != nil {
			continue
		}
		r.PriceChange7d = interfaces.Float((r.Price - old) / old * 100)
	}
}
