package aggregator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/status-im/token-aggregator/cache"
	"github.com/status-im/token-aggregator/interfaces"
	mock_interfaces "github.com/status-im/token-aggregator/interfaces/mocks"
)

var errUpstream = errors.New("upstream unavailable")

func newStore() *cache.Service {
	config := cache.DefaultCacheConfig()
	config.Redis.Enabled = false
	return cache.NewService(config)
}

func newSource(ctrl *gomock.Controller, name string) *mock_interfaces.MockTokenSource {
	src := mock_interfaces.NewMockTokenSource(ctrl)
	src.EXPECT().Name().Return(name).AnyTimes()
	src.EXPECT().Healthy().Return(true).AnyTimes()
	return src
}

func testConfig() Config {
	return Config{Deadline: time.Second, SourceTimeout: 500 * time.Millisecond, CacheTTL: time.Minute}
}

func TestEngine_MergesAllSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	b := newSource(ctrl, "b")

	a.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{
		{Address: "X", Volume: 100, PriceChange24h: interfaces.Float(0), Source: "a"},
	}, nil)
	b.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{
		{Address: "x", Volume: 150, PriceChange24h: interfaces.Float(5), Source: "b"},
	}, nil)

	engine := NewEngine([]interfaces.TokenSource{a, b}, newStore(), nil, testConfig())
	records, status := engine.GetAllWithStatus(context.Background(), true)

	assert.Equal(t, interfaces.CacheStatusMiss, status)
	require.Len(t, records, 1)
	assert.Equal(t, "x", records[0].Address)
	assert.Equal(t, 150.0, records[0].Volume)
	assert.Equal(t, 5.0, *records[0].PriceChange24h)
	assert.Equal(t, "a,b", records[0].Source)
	assert.Equal(t, 1050.0, *records[0].Volume7d)
}

func TestEngine_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	b := newSource(ctrl, "b")

	a.EXPECT().FetchTrending(gomock.Any()).Return(nil, errUpstream)
	b.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{{Address: "y", Source: "b"}}, nil)

	engine := NewEngine([]interfaces.TokenSource{a, b}, newStore(), nil, testConfig())
	records := engine.GetAll(context.Background(), true)

	require.Len(t, records, 1)
	assert.Equal(t, "y", records[0].Address)

	statuses := engine.SourceStatuses()
	require.Len(t, statuses, 2)
	assert.False(t, statuses[0].Healthy)
	assert.Equal(t, errUpstream.Error(), statuses[0].LastError)
	assert.True(t, statuses[1].Healthy)
	assert.Equal(t, 1, statuses[1].Records)
}

func TestEngine_CachesMergedResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	a.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{{Address: "x", Source: "a"}}, nil).Times(1)

	engine := NewEngine([]interfaces.TokenSource{a}, newStore(), nil, testConfig())
	ctx := context.Background()

	engine.GetAll(ctx, true)
	records, status := engine.GetAllWithStatus(ctx, true)

	assert.Equal(t, interfaces.CacheStatusHit, status)
	require.Len(t, records, 1)
}

func TestEngine_BypassSkipsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	a.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{{Address: "x", Source: "a"}}, nil).Times(2)

	engine := NewEngine([]interfaces.TokenSource{a}, newStore(), nil, testConfig())
	ctx := context.Background()

	engine.GetAll(ctx, true)
	_, status := engine.GetAllWithStatus(ctx, false)

	assert.Equal(t, interfaces.CacheStatusBypass, status)
}

func TestEngine_TotalOutageIsEmptyAndNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	a.EXPECT().FetchTrending(gomock.Any()).Return(nil, errUpstream).Times(2)

	engine := NewEngine([]interfaces.TokenSource{a}, newStore(), nil, testConfig())
	ctx := context.Background()

	records := engine.GetAll(ctx, true)
	require.NotNil(t, records)
	assert.Empty(t, records)

	_, status := engine.GetAllWithStatus(ctx, true)
	assert.Equal(t, interfaces.CacheStatusMiss, status)
}

func TestEngine_DeadlineReturnsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	fast := newSource(ctrl, "fast")
	slow := newSource(ctrl, "slow")

	release := make(chan struct{})
	defer close(release)

	fast.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{{Address: "x", Source: "fast"}}, nil)
	slow.EXPECT().FetchTrending(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		<-release
		return []interfaces.TokenRecord{{Address: "late"}}, nil
	})

	engine := NewEngine([]interfaces.TokenSource{fast, slow}, newStore(), nil, Config{Deadline: 50 * time.Millisecond, CacheTTL: time.Minute})

	start := time.Now()
	records := engine.GetAll(context.Background(), true)

	assert.Empty(t, records, "no partial result past the deadline")
	assert.Less(t, time.Since(start), time.Second)
}

func TestEngine_SourceTimeoutCancelsHungSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	ok := newSource(ctrl, "ok")
	hung := newSource(ctrl, "hung")

	ok.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{{Address: "x", Source: "ok"}}, nil)
	hung.EXPECT().FetchTrending(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	engine := NewEngine([]interfaces.TokenSource{ok, hung}, newStore(), nil, Config{
		Deadline:      2 * time.Second,
		SourceTimeout: 50 * time.Millisecond,
		CacheTTL:      time.Minute,
	})

	records := engine.GetAll(context.Background(), true)
	require.Len(t, records, 1)
	assert.Equal(t, "x", records[0].Address)
}

func TestEngine_CallerCancellationDoesNotAbortFanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	a.EXPECT().FetchTrending(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		assert.NoError(t, ctx.Err())
		return []interfaces.TokenRecord{{Address: "x", Source: "a"}}, nil
	})

	engine := NewEngine([]interfaces.TokenSource{a}, newStore(), nil, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := engine.GetAll(ctx, false)
	require.Len(t, records, 1)
}

func TestEngine_ConcurrentMissesShareOneFanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")

	var calls atomic.Int32
	release := make(chan struct{})
	a.EXPECT().FetchTrending(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]interfaces.TokenRecord, error) {
		calls.Add(1)
		<-release
		return []interfaces.TokenRecord{{Address: "x", Source: "a"}}, nil
	}).MinTimes(1)

	engine := NewEngine([]interfaces.TokenSource{a}, newStore(), nil, testConfig())

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records := engine.GetAll(context.Background(), true)
			assert.Len(t, records, 1)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestEngine_SearchUsesAggregate(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	a.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{
		{Address: "dezx", Name: "Bonk", Ticker: "BONK", Source: "a"},
		{Address: "epjf", Name: "USD Coin", Ticker: "USDC", Source: "a"},
	}, nil)
	a.EXPECT().Search(gomock.Any(), gomock.Any()).Times(0)

	engine := NewEngine([]interfaces.TokenSource{a}, newStore(), nil, testConfig())
	ctx := context.Background()

	records := engine.Search(ctx, "bonk")
	require.Len(t, records, 1)
	assert.Equal(t, "dezx", records[0].Address)

	assert.Empty(t, engine.Search(ctx, "nothing"))
	assert.Empty(t, engine.Search(ctx, " "))
}

func TestEngine_SearchFallsBackToSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	b := newSource(ctrl, "b")

	a.EXPECT().FetchTrending(gomock.Any()).Return(nil, errUpstream)
	b.EXPECT().FetchTrending(gomock.Any()).Return(nil, errUpstream)
	a.EXPECT().Search(gomock.Any(), "bonk").Return([]interfaces.TokenRecord{{Address: "DEZX", Name: "Bonk", Source: "a"}}, nil).Times(1)
	b.EXPECT().Search(gomock.Any(), "bonk").Return(nil, errUpstream).Times(1)

	engine := NewEngine([]interfaces.TokenSource{a, b}, newStore(), nil, testConfig())

	records := engine.Search(context.Background(), "bonk")
	require.Len(t, records, 1)
	assert.Equal(t, "dezx", records[0].Address)
}

func TestEngine_InvalidateCacheKeepsAdapterKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	a.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{{Address: "x", Source: "a"}}, nil).Times(2)

	store := newStore()
	ctx := context.Background()
	store.Set(ctx, "a:trending:x", []byte("[]"), time.Minute)

	engine := NewEngine([]interfaces.TokenSource{a}, store, nil, testConfig())
	engine.GetAll(ctx, true)

	assert.Equal(t, 1, engine.InvalidateCache(ctx))

	_, found := store.Get(ctx, "a:trending:x")
	assert.True(t, found)

	_, status := engine.GetAllWithStatus(ctx, true)
	assert.Equal(t, interfaces.CacheStatusMiss, status)
}

func TestEngine_EnrichesFromHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newSource(ctrl, "a")
	a.EXPECT().FetchTrending(gomock.Any()).Return([]interfaces.TokenRecord{{Address: "x", Price: 4, Source: "a"}}, nil)

	engine := NewEngine([]interfaces.TokenSource{a}, newStore(), &fakeHistory{prices: map[string]float64{"x": 2}}, testConfig())

	records := engine.GetAll(context.Background(), true)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].PriceChange7d)
	assert.InDelta(t, 100.0, *records[0].PriceChange7d, 1e-9)
}
