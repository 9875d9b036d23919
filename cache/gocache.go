package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// GoCache in-process fallback store using go-cache.
// Expired items are dropped lazily on read and by the cleanup janitor.
type GoCache struct {
	cache *cache.Cache
}

// NewGoCache creates a new GoCache instance
// defaultExpiration: default expiration time for items
// cleanupInterval: interval for cleaning up expired items
func NewGoCache(defaultExpiration, cleanupInterval time.Duration) *GoCache {
	return &GoCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the value for key if present and not expired
func (gc *GoCache) Get(key string) ([]byte, bool) {
	value, found := gc.cache.Get(key)
	if !found {
		return nil, false
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, false
	}
	return data, true
}

// Set stores key with the specified timeout
// If timeout is 0, uses cache's default expiration
func (gc *GoCache) Set(key string, value []byte, timeout time.Duration) {
	gc.cache.Set(key, value, timeout)
}

// Delete removes items from cache by keys
func (gc *GoCache) Delete(keys []string) {
	for _, key := range keys {
		gc.cache.Delete(key)
	}
}

// Keys returns unexpired keys accepted by match
func (gc *GoCache) Keys(match func(string) bool) []string {
	items := gc.cache.Items()
	keys := make([]string, 0, len(items))
	for key := range items {
		if match(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Clear removes all items from cache
func (gc *GoCache) Clear() {
	gc.cache.Flush()
}

// ItemCount returns the number of items in cache
func (gc *GoCache) ItemCount() int {
	return gc.cache.ItemCount()
}
