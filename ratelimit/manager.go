package ratelimit

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/config"
)

// IManager provides the limiter of an upstream source
type IManager interface {
	GetLimiter(source string) *Limiter
}

// Manager owns one Limiter per upstream source for the whole process lifetime
type Manager struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	config   map[string]config.RateLimit
}

// NewManager creates limiters for every configured source
func NewManager(limits map[string]config.RateLimit) *Manager {
	m := &Manager{
		limiters: make(map[string]*Limiter, len(limits)),
		config:   make(map[string]config.RateLimit, len(limits)),
	}

	for source, rl := range limits {
		m.config[source] = rl
		m.limiters[source] = NewLimiter(source, rl)
	}

	return m
}

// GetLimiter returns the limiter for source, creating one with defaults if missing
func (m *Manager) GetLimiter(source string) *Limiter {
	if m == nil {
		return nil
	}

	m.mu.RLock()
	if lim, ok := m.limiters[source]; ok {
		m.mu.RUnlock()
		return lim
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if lim, ok := m.limiters[source]; ok {
		return lim
	}

	log.Warnf("RateLimiter: no limits configured for %s, using defaults", source)
	lim := NewLimiter(source, m.config[source])
	m.limiters[source] = lim
	return lim
}

// Stats returns a snapshot of every limiter keyed by source
func (m *Manager) Stats() map[string]Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]Stats, len(m.limiters))
	for source, lim := range m.limiters {
		stats[source] = lim.Stats()
	}
	return stats
}

// Start implements core.Interface
func (m *Manager) Start(ctx context.Context) error {
	return nil
}

// Stop implements core.Interface
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, lim := range m.limiters {
		lim.Stop()
	}
}
