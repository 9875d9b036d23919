package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no snapshot exists for the requested day
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the recorded price of one token on one UTC day
type Snapshot struct {
	Address    string
	Day        time.Time
	Price      float64
	RecordedAt time.Time
}

// Reader looks up historical prices
type Reader interface {
	// PricesOn returns prices recorded on day keyed by address; missing addresses are absent
	PricesOn(ctx context.Context, day time.Time, addresses []string) (map[string]float64, error)
}

// Writer persists snapshots
type Writer interface {
	Record(ctx context.Context, snapshots []Snapshot) error
}

// Store implements Reader and Writer using PostgreSQL.
type Store struct {
	pool *Pool
}

// NewStore creates a new Store.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Compile-time interface checks.
var (
	_ Reader = (*Store)(nil)
	_ Writer = (*Store)(nil)
)

// Day truncates t to its UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Record upserts snapshots; a later snapshot for the same address and day replaces the earlier one.
func (s *Store) Record(ctx context.Context, snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_snapshots (address, day, price, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address, day) DO UPDATE
		SET price = EXCLUDED.price, recorded_at = EXCLUDED.recorded_at
	`

	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		recordedAt := snap.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}
		batch.Queue(query, snap.Address, Day(snap.Day), snap.Price, recordedAt)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("record price snapshots: %w", err)
	}
	return nil
}

// PriceAt returns the price of address recorded on day. Returns ErrNotFound if not exists.
func (s *Store) PriceAt(ctx context.Context, address string, day time.Time) (float64, error) {
	query := `
		SELECT price
		FROM price_snapshots
		WHERE address = $1 AND day = $2
	`

	var price float64
	if err := s.pool.QueryRow(ctx, query, address, Day(day)).Scan(&price); err != nil {
		if isNotFoundError(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("get price snapshot: %w", err)
	}
	return price, nil
}

// PricesOn implements Reader
func (s *Store) PricesOn(ctx context.Context, day time.Time, addresses []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(addresses))
	if len(addresses) == 0 {
		return prices, nil
	}

	query := `
		SELECT address, price
		FROM price_snapshots
		WHERE day = $1 AND address = ANY($2)
	`

	rows, err := s.pool.Query(ctx, query, Day(day), addresses)
	if err != nil {
		return nil, fmt.Errorf("query price snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			address string
			price   float64
		)
		if err := rows.Scan(&address, &price); err != nil {
			return nil, fmt.Errorf("scan price snapshot: %w", err)
		}
		prices[address] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price snapshots: %w", err)
	}

	return prices, nil
}
