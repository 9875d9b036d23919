package interfaces

import "context"

//go:generate mockgen -destination=mocks/token_source.go . TokenSource

// TokenSource is an upstream market data provider transformed into TokenRecord shape
type TokenSource interface {
	// Name returns the source tag written into TokenRecord.Source
	Name() string

	// FetchTrending returns the provider's current trending tokens
	FetchTrending(ctx context.Context) ([]TokenRecord, error)

	// Search returns tokens matching the query
	Search(ctx context.Context, query string) ([]TokenRecord, error)

	// Healthy reports whether at least one upstream call succeeded
	Healthy() bool
}
