package history

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/metrics"
	"github.com/status-im/token-aggregator/scheduler"
)

// TokenProvider supplies the merged token list to snapshot
type TokenProvider interface {
	GetAll(ctx context.Context, useCache bool) []interfaces.TokenRecord
}

// Recorder periodically snapshots the price of every aggregated token
type Recorder struct {
	provider  TokenProvider
	writer    Writer
	scheduler *scheduler.Scheduler
	now       func() time.Time
}

// NewRecorder creates a recorder running every interval
func NewRecorder(provider TokenProvider, writer Writer, interval time.Duration) *Recorder {
	r := &Recorder{
		provider: provider,
		writer:   writer,
		now:      time.Now,
	}
	r.scheduler = scheduler.New("history-recorder", interval, r.Record)
	return r
}

// Start implements core.Interface
func (r *Recorder) Start(ctx context.Context) error {
	r.scheduler.Start(ctx, true)
	return nil
}

// Stop implements core.Interface
func (r *Recorder) Stop() {
	r.scheduler.Stop()
}

// Record snapshots the current prices once
func (r *Recorder) Record(ctx context.Context) error {
	records := r.provider.GetAll(ctx, true)

	now := r.now().UTC()
	snapshots := make([]Snapshot, 0, len(records))
	for _, record := range records {
		if record.Price <= 0 {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Address:    record.Address,
			Day:        Day(now),
			Price:      record.Price,
			RecordedAt: now,
		})
	}

	err := r.writer.Record(ctx, snapshots)
	metrics.RecordHistorySnapshots(len(snapshots), err)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	log.Printf("History: recorded %d price snapshots", len(snapshots))
	return nil
}
