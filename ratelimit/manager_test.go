package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/token-aggregator/config"
)

func TestManager_OneLimiterPerSource(t *testing.T) {
	m := NewManager(map[string]config.RateLimit{
		config.SourceDexScreener: {RateLimitPerMinute: 300, Burst: 5, Concurrency: 2},
		config.SourceJupiter:     {RateLimitPerMinute: 60, Burst: 2, Concurrency: 1},
	})
	defer m.Stop()

	dex := m.GetLimiter(config.SourceDexScreener)
	require.NotNil(t, dex)
	assert.Same(t, dex, m.GetLimiter(config.SourceDexScreener), "limiters live for the whole process")
	assert.Equal(t, config.SourceDexScreener, dex.Name())

	stats := m.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, 5, stats[config.SourceDexScreener].Capacity)
	assert.Equal(t, 2, stats[config.SourceJupiter].Capacity)
}

func TestManager_UnknownSourceGetsDefaults(t *testing.T) {
	m := NewManager(nil)
	defer m.Stop()

	lim := m.GetLimiter(config.SourceGeckoTerminal)
	require.NotNil(t, lim)
	assert.Equal(t, config.DefaultBurst, lim.Stats().Capacity)
	assert.Len(t, m.Stats(), 1)
}

func TestManager_NilManager(t *testing.T) {
	var m *Manager
	assert.Nil(t, m.GetLimiter(config.SourceJupiter))

	// A nil limiter runs the task directly
	got, err := Do(context.Background(), m.GetLimiter(config.SourceJupiter), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestManager_StopFailsQueuedTasks(t *testing.T) {
	m := NewManager(map[string]config.RateLimit{
		config.SourceJupiter: {RateLimitPerMinute: 1, Burst: 1, Concurrency: 1},
	})
	require.NoError(t, m.Start(context.Background()))

	lim := m.GetLimiter(config.SourceJupiter)
	require.NoError(t, lim.Schedule(context.Background(), func(ctx context.Context) error { return nil }))

	// The bucket is empty, so this task waits in the queue until Stop
	done := make(chan error, 1)
	go func() {
		done <- lim.Schedule(context.Background(), func(ctx context.Context) error { return nil })
	}()

	assert.Eventually(t, func() bool { return lim.Stats().Queued == 1 }, time.Second, 5*time.Millisecond)
	m.Stop()

	assert.ErrorIs(t, <-done, ErrLimiterStopped)
}
