package sources_common

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// DiscoveryMode is the process-wide expanded discovery flag. Each fetch reads
// it once so that a single fetch is consistently in one mode.
type DiscoveryMode struct {
	expanded atomic.Bool
}

// NewDiscoveryMode creates the flag with its initial value
func NewDiscoveryMode(expanded bool) *DiscoveryMode {
	d := &DiscoveryMode{}
	d.expanded.Store(expanded)
	return d
}

// Expanded returns the current mode. A nil mode is never expanded.
func (d *DiscoveryMode) Expanded() bool {
	if d == nil {
		return false
	}
	return d.expanded.Load()
}

// SetExpanded switches the mode and returns the previous value
func (d *DiscoveryMode) SetExpanded(expanded bool) bool {
	previous := d.expanded.Swap(expanded)
	if previous != expanded {
		log.Printf("Discovery: expanded mode set to %t", expanded)
	}
	return previous
}
