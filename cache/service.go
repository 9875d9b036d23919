package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/metrics"
)

// Mode identifies which backend serves cache operations
type Mode string

const (
	// ModePrimary operations go to Redis
	ModePrimary Mode = "primary"
	// ModeFallback operations go to the in-process cache
	ModeFallback Mode = "fallback"
)

// Service implements Store on top of Redis with a one-way switch to an
// in-process fallback once Redis is found unusable. Backend errors are
// logged and never surface to callers.
type Service struct {
	config   Config
	primary  *RedisStore
	fallback *GoCache

	mu       sync.RWMutex
	mode     Mode
	failures int
}

// NewService creates a new cache service with the given configuration
func NewService(config Config) *Service {
	s := &Service{
		config:   config,
		fallback: NewGoCache(config.GoCache.DefaultExpiration, config.GoCache.CleanupInterval),
		mode:     ModeFallback,
	}

	if config.Redis.Enabled {
		s.primary = NewRedisStore(config.Redis)
		s.mode = ModePrimary
	}

	metrics.SetCacheMode(string(s.mode))
	return s
}

// Start implements core.Interface. An unreachable primary is not an error:
// the service continues in fallback mode.
func (s *Service) Start(ctx context.Context) error {
	if s.fallback == nil {
		return fmt.Errorf("cache service not properly initialized")
	}

	if s.Mode() != ModePrimary {
		log.Printf("Cache: redis disabled, using in-process cache")
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.dialTimeout())
	defer cancel()

	if err := s.primary.Ping(pingCtx); err != nil {
		s.switchToFallback(fmt.Sprintf("connect to %s failed: %v", s.config.Redis.Addr, err))
		return nil
	}

	log.Printf("Cache: connected to redis at %s", s.config.Redis.Addr)
	return nil
}

// Stop implements core.Interface
func (s *Service) Stop() {
	if s.primary != nil {
		if err := s.primary.Close(); err != nil {
			log.Warnf("Cache: failed to close redis client: %v", err)
		}
	}
	s.fallback.Clear()
}

// Mode returns the active backend
func (s *Service) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Get implements Store
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool) {
	var (
		data  []byte
		found bool
	)

	if s.Mode() == ModePrimary {
		var err error
		data, found, err = s.primary.Get(ctx, key)
		if err != nil {
			s.onPrimaryError("get", err)
			found = false
		} else {
			s.onPrimarySuccess()
		}
	} else {
		data, found = s.fallback.Get(key)
	}

	metrics.RecordCacheLookup(found)
	return data, found
}

// Set implements Store
func (s *Service) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.config.GetTTL()
	}

	if s.Mode() == ModePrimary {
		if err := s.primary.Set(ctx, key, value, ttl); err != nil {
			s.onPrimaryError("set", err)
			return
		}
		s.onPrimarySuccess()
		return
	}

	s.fallback.Set(key, value, ttl)
}

// Delete implements Store
func (s *Service) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	if s.Mode() == ModePrimary {
		if err := s.primary.Delete(ctx, keys...); err != nil {
			s.onPrimaryError("delete", err)
			return
		}
		s.onPrimarySuccess()
		return
	}

	s.fallback.Delete(keys)
}

// Keys implements Store
func (s *Service) Keys(ctx context.Context, pattern string) []string {
	if s.Mode() == ModePrimary {
		keys, err := s.primary.Keys(ctx, pattern)
		if err != nil {
			s.onPrimaryError("keys", err)
			return nil
		}
		s.onPrimarySuccess()
		return keys
	}

	return s.fallback.Keys(globMatcher(pattern))
}

// FlushAll implements Store
func (s *Service) FlushAll(ctx context.Context) {
	if s.Mode() == ModePrimary {
		if err := s.primary.FlushAll(ctx); err != nil {
			s.onPrimaryError("flush", err)
			return
		}
		s.onPrimarySuccess()
		return
	}

	s.fallback.Clear()
}

func (s *Service) onPrimarySuccess() {
	s.mu.Lock()
	s.failures = 0
	s.mu.Unlock()
}

func (s *Service) onPrimaryError(op string, err error) {
	// The caller gave up; that says nothing about the backend
	if errors.Is(err, context.Canceled) {
		return
	}

	log.Warnf("Cache: redis %s failed: %v", op, err)

	if isAuthError(err) {
		s.switchToFallback(fmt.Sprintf("authentication failed: %v", err))
		return
	}

	s.mu.Lock()
	s.failures++
	exceeded := s.failures > s.maxFailures()
	s.mu.Unlock()

	if exceeded {
		s.switchToFallback(fmt.Sprintf("%d consecutive errors", s.maxFailures()+1))
	}
}

// switchToFallback moves to fallback mode. There is no way back.
func (s *Service) switchToFallback(reason string) {
	s.mu.Lock()
	if s.mode == ModeFallback {
		s.mu.Unlock()
		return
	}
	s.mode = ModeFallback
	s.mu.Unlock()

	metrics.SetCacheMode(string(ModeFallback))
	log.Warnf("Cache: switching to in-process fallback: %s", reason)
}

func (s *Service) maxFailures() int {
	if s.config.Redis.MaxFailures > 0 {
		return s.config.Redis.MaxFailures
	}
	return 3
}

func (s *Service) dialTimeout() time.Duration {
	if s.config.Redis.DialTimeout > 0 {
		return s.config.Redis.DialTimeout
	}
	return 2 * time.Second
}

// Stats returns statistics about the cache service
func (s *Service) Stats() ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServiceStats{
		Mode:          s.mode,
		FallbackItems: s.fallback.ItemCount(),
		Failures:      s.failures,
	}
}

// ServiceStats represents cache service statistics
type ServiceStats struct {
	Mode          Mode `json:"mode"`
	FallbackItems int  `json:"fallback_items"`
	Failures      int  `json:"consecutive_failures"`
}
