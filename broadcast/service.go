package broadcast

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/events"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/metrics"
	"github.com/status-im/token-aggregator/scheduler"
)

// EventType identifies a real-time message
type EventType string

const (
	EventInitial EventType = "initial"
	EventUpdate  EventType = "update"
	EventSpike   EventType = "spike"
)

// subscriberBuffer is how many events a slow subscriber may lag behind
const subscriberBuffer = 16

// Event is one batch pushed to subscribers
type Event struct {
	Type EventType                `json:"type"`
	Data []interfaces.TokenRecord `json:"data"`
}

// TokenProvider supplies the merged token list
type TokenProvider interface {
	GetAll(ctx context.Context, useCache bool) []interfaces.TokenRecord
}

// Service periodically refetches tokens and emits what changed
type Service struct {
	provider  TokenProvider
	tracker   *Tracker
	hub       *events.Hub[Event]
	scheduler *scheduler.Scheduler
}

// NewService creates a broadcast service ticking at cfg.Interval
func NewService(provider TokenProvider, cfg config.BroadcastConfig) *Service {
	s := &Service{
		provider: provider,
		tracker: NewTracker(Thresholds{
			PriceChange: cfg.PriceChangeThreshold,
			VolumeSpike: cfg.VolumeSpikeRatio,
			TTL:         cfg.SnapshotTTL,
		}),
		hub: events.NewHub[Event](subscriberBuffer),
	}
	s.scheduler = scheduler.New("broadcast", cfg.Interval, s.Tick)
	return s
}

// Start implements core.Interface
func (s *Service) Start(ctx context.Context) error {
	s.scheduler.Start(ctx, false)
	log.Printf("Broadcast: started")
	return nil
}

// Stop implements core.Interface
func (s *Service) Stop() {
	s.scheduler.Stop()
}

// Subscribe registers a receiver of update and spike events
func (s *Service) Subscribe() *events.Subscription[Event] {
	return s.hub.Subscribe()
}

// Subscribers returns the number of active subscriptions
func (s *Service) Subscribers() int {
	return s.hub.Len()
}

// Tick runs one fetch-diff-emit cycle
func (s *Service) Tick(ctx context.Context) error {
	records := s.provider.GetAll(ctx, false)
	delta := s.tracker.DiffAndUpdate(records)

	s.emit(ctx, EventUpdate, delta.Updates)
	s.emit(ctx, EventSpike, delta.Spikes)

	log.Debugf("Broadcast: %d tokens, %d updates, %d spikes, %d tracked",
		len(records), len(delta.Updates), len(delta.Spikes), s.tracker.Len())
	return nil
}

func (s *Service) emit(ctx context.Context, eventType EventType, records []interfaces.TokenRecord) {
	if len(records) == 0 {
		return
	}

	delivered := s.hub.Emit(ctx, Event{Type: eventType, Data: records})
	metrics.RecordBroadcast(string(eventType), len(records))

	if delivered < s.hub.Len() {
		log.Debugf("Broadcast: %s delivered to %d of %d subscribers", eventType, delivered, s.hub.Len())
	}
}
