package broadcast

import (
	"math"
	"sync"
	"time"

	"github.com/status-im/token-aggregator/interfaces"
)

// Thresholds decide which changes are broadcast
type Thresholds struct {
	// PriceChange is the relative price move that counts as an update (0.01 = 1%)
	PriceChange float64
	// VolumeSpike is the volume multiple that counts as a spike
	VolumeSpike float64
	// TTL evicts addresses not seen for this long; zero keeps them forever
	TTL time.Duration
}

// Delta is the outcome of one comparison. Every spike is also an update.
type Delta struct {
	Updates []interfaces.TokenRecord
	Spikes  []interfaces.TokenRecord
}

type snapshot struct {
	record interfaces.TokenRecord
	seen   time.Time
}

// Tracker holds the last broadcast state per address
type Tracker struct {
	thresholds Thresholds
	now        func() time.Time

	mu        sync.Mutex
	snapshots map[string]snapshot
}

// NewTracker creates an empty tracker
func NewTracker(thresholds Thresholds) *Tracker {
	return &Tracker{
		thresholds: thresholds,
		now:        time.Now,
		snapshots:  make(map[string]snapshot),
	}
}

// DiffAndUpdate compares records against the stored snapshots, stores every
// record as the new snapshot and returns what changed.
func (t *Tracker) DiffAndUpdate(records []interfaces.TokenRecord) Delta {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var delta Delta

	for _, record := range records {
		address := interfaces.CanonicalAddress(record.Address)
		prev, ok := t.snapshots[address]

		switch {
		case !ok:
			delta.Updates = append(delta.Updates, record)
		case record.Volume > prev.record.Volume*t.thresholds.VolumeSpike:
			delta.Updates = append(delta.Updates, record)
			delta.Spikes = append(delta.Spikes, record)
		case math.Abs(record.Price-prev.record.Price) > prev.record.Price*t.thresholds.PriceChange:
			delta.Updates = append(delta.Updates, record)
		}

		t.snapshots[address] = snapshot{record: record, seen: now}
	}

	t.evict(now)
	return delta
}

func (t *Tracker) evict(now time.Time) {
	if t.thresholds.TTL <= 0 {
		return
	}
	for address, snap := range t.snapshots {
		if now.Sub(snap.seen) > t.thresholds.TTL {
			delete(t.snapshots, address)
		}
	}
}

// Len returns the number of tracked addresses
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.snapshots)
}
