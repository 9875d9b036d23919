package cache

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoCache_Basic(t *testing.T) {
	cache := NewGoCache(5*time.Minute, 10*time.Minute)

	cache.Set("key1", []byte("value1"), 0)
	cache.Set("key2", []byte("value2"), 0)

	value, found := cache.Get("key1")
	assert.True(t, found)
	assert.Equal(t, []byte("value1"), value)

	_, found = cache.Get("missing")
	assert.False(t, found)

	assert.Equal(t, 2, cache.ItemCount())
}

func TestGoCache_Delete(t *testing.T) {
	cache := NewGoCache(5*time.Minute, 10*time.Minute)

	cache.Set("key1", []byte("value1"), 0)
	cache.Set("key2", []byte("value2"), 0)
	cache.Set("key3", []byte("value3"), 0)

	cache.Delete([]string{"key1", "key3"})

	_, found := cache.Get("key1")
	assert.False(t, found)
	_, found = cache.Get("key2")
	assert.True(t, found)
	assert.Equal(t, 1, cache.ItemCount())
}

func TestGoCache_Expiration(t *testing.T) {
	cache := NewGoCache(5*time.Minute, 10*time.Minute)

	cache.Set("short", []byte("value"), 50*time.Millisecond)

	_, found := cache.Get("short")
	assert.True(t, found)

	time.Sleep(100 * time.Millisecond)

	_, found = cache.Get("short")
	assert.False(t, found)
	assert.Empty(t, cache.Keys(globMatcher("*")))
}

func TestGoCache_Keys(t *testing.T) {
	cache := NewGoCache(5*time.Minute, 10*time.Minute)

	cache.Set("aggregated:tokens", []byte("a"), 0)
	cache.Set("aggregated:search:pepe", []byte("b"), 0)
	cache.Set("dexscreener:trending:50", []byte("c"), 0)

	keys := cache.Keys(globMatcher("aggregated:*"))
	sort.Strings(keys)
	assert.Equal(t, []string{"aggregated:search:pepe", "aggregated:tokens"}, keys)

	cache.Clear()
	assert.Equal(t, 0, cache.ItemCount())
}
