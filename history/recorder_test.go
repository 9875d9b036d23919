package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/token-aggregator/interfaces"
)

type staticProvider struct {
	records  []interfaces.TokenRecord
	useCache []bool
	mu       sync.Mutex
}

func (p *staticProvider) GetAll(ctx context.Context, useCache bool) []interfaces.TokenRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.useCache = append(p.useCache, useCache)
	return p.records
}

type memoryWriter struct {
	mu        sync.Mutex
	snapshots []Snapshot
	err       error
}

func (w *memoryWriter) Record(ctx context.Context, snapshots []Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.snapshots = append(w.snapshots, snapshots...)
	return nil
}

func (w *memoryWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.snapshots)
}

func TestRecorder_Record(t *testing.T) {
	provider := &staticProvider{records: []interfaces.TokenRecord{
		{Address: "abc", Price: 1.25},
		{Address: "zero", Price: 0},
		{Address: "def", Price: 7},
	}}
	writer := &memoryWriter{}

	recorder := NewRecorder(provider, writer, time.Hour)
	fixed := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time { return fixed }

	require.NoError(t, recorder.Record(context.Background()))

	require.Len(t, writer.snapshots, 2, "tokens without a price are skipped")
	assert.Equal(t, "abc", writer.snapshots[0].Address)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), writer.snapshots[0].Day)
	assert.Equal(t, fixed, writer.snapshots[0].RecordedAt)
	assert.Equal(t, []bool{true}, provider.useCache)
}

func TestRecorder_WriterError(t *testing.T) {
	errDB := errors.New("db down")
	provider := &staticProvider{records: []interfaces.TokenRecord{{Address: "abc", Price: 1}}}
	recorder := NewRecorder(provider, &memoryWriter{err: errDB}, time.Hour)

	assert.ErrorIs(t, recorder.Record(context.Background()), errDB)
}

func TestRecorder_StartRunsImmediately(t *testing.T) {
	provider := &staticProvider{records: []interfaces.TokenRecord{{Address: "abc", Price: 1}}}
	writer := &memoryWriter{}
	recorder := NewRecorder(provider, writer, time.Hour)

	require.NoError(t, recorder.Start(context.Background()))
	defer recorder.Stop()

	require.Eventually(t, func() bool { return writer.count() == 1 }, time.Second, 5*time.Millisecond)
}
