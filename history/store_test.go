package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndPriceAt(t *testing.T) {
	pool := setupTestDB(t)
	store := NewStore(pool)
	ctx := context.Background()

	day := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

	err := store.Record(ctx, []Snapshot{
		{Address: "abc", Day: day, Price: 1.5},
		{Address: "def", Day: day, Price: 20},
	})
	require.NoError(t, err)

	price, err := store.PriceAt(ctx, "abc", day)
	require.NoError(t, err)
	assert.Equal(t, 1.5, price)

	// Same address and day is upserted
	require.NoError(t, store.Record(ctx, []Snapshot{{Address: "abc", Day: day.Add(time.Hour), Price: 2}}))
	price, err = store.PriceAt(ctx, "abc", day)
	require.NoError(t, err)
	assert.Equal(t, 2.0, price)

	_, err = store.PriceAt(ctx, "abc", day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PricesOn(t *testing.T) {
	pool := setupTestDB(t)
	store := NewStore(pool)
	ctx := context.Background()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, []Snapshot{
		{Address: "abc", Day: day, Price: 1},
		{Address: "def", Day: day, Price: 2},
		{Address: "abc", Day: day.AddDate(0, 0, 1), Price: 3},
	}))

	prices, err := store.PricesOn(ctx, day, []string{"abc", "def", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"abc": 1, "def": 2}, prices)

	prices, err = store.PricesOn(ctx, day, nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestStore_RecordEmpty(t *testing.T) {
	// No pool needed: empty input returns before touching the database
	store := NewStore(nil)
	assert.NoError(t, store.Record(context.Background(), nil))
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2025, 6, 2, 3, 0, 0, 0, loc)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Day(in))
}
