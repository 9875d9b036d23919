package cache

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store is the cache-aside abstraction shared by sources and the aggregator.
// Implementations never return backend errors: a failed read is a miss and a
// failed write is dropped.
type Store interface {
	// Get returns the value stored under key and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl; a zero ttl uses the store default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes keys
	Delete(ctx context.Context, keys ...string)

	// Keys returns keys matching a glob pattern where * matches any run of characters
	Keys(ctx context.Context, pattern string) []string

	// FlushAll removes every key
	FlushAll(ctx context.Context)
}

// GetJSON reads key and decodes it into T. Undecodable values count as a miss.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var value T

	data, found := s.Get(ctx, key)
	if !found {
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		log.Warnf("Cache: failed to decode %s: %v", key, err)
		return value, false
	}

	return value, true
}

// SetJSON encodes value and stores it under key
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warnf("Cache: failed to encode %s: %v", key, err)
		return
	}

	s.Set(ctx, key, data, ttl)
}
