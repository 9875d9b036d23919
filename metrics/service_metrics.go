package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

// MetricsPrefix is the prefix used for all metrics
const MetricsPrefix = "token_aggregator_"

var (
	// Upstream request counter
	// Cardinality: ~15 (3 sources × 5 statuses)
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "upstream_requests_total",
			Help: "Total number of HTTP requests to upstream market data APIs",
		},
		[]string{"source", "status"},
	)

	// Retry attempts counter
	// Cardinality: ~3 (number of sources)
	UpstreamRetryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "upstream_retry_attempts_total",
			Help: "Total number of retry attempts per upstream source",
		},
		[]string{"source"},
	)

	// Upstream request latency
	// Cardinality: ~6 (3 sources × trending/search)
	UpstreamLatencyHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "upstream_request_latency_seconds",
			Help: "Upstream HTTP request latency by source and operation",
		},
		[]string{"source", "operation"},
	)

	// Limiter state per source
	LimiterTokensGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "limiter_tokens",
			Help: "Tokens currently available in the source rate limiter",
		},
		[]string{"source"},
	)

	LimiterQueueGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "limiter_queue_depth",
			Help: "Number of requests waiting in the source rate limiter",
		},
		[]string{"source"},
	)

	LimiterInFlightGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "limiter_in_flight",
			Help: "Number of requests currently running through the source rate limiter",
		},
		[]string{"source"},
	)

	// Aggregation fan-out duration
	// Cardinality: 3 (ok, partial, timeout)
	AggregationDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "aggregation_duration_seconds",
			Help: "Time taken to fan out to every source and merge the results",
		},
		[]string{"outcome"},
	)

	// Settled adapter outcomes
	// Cardinality: ~6 (3 sources × fulfilled/rejected)
	SourceOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "source_outcomes_total",
			Help: "Settled adapter outcomes per aggregation",
		},
		[]string{"source", "outcome"},
	)

	AggregatedTokensGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "aggregated_tokens",
			Help: "Number of tokens in the last merged collection",
		},
	)

	// Cache lookups
	// Cardinality: 2 (hit, miss)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "cache_lookups_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"},
	)

	// Active cache backend, 1 for the active mode and 0 otherwise
	CacheModeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "cache_mode",
			Help: "Active cache backend",
		},
		[]string{"mode"},
	)

	// Broadcast events
	// Cardinality: 2 (update, spike)
	BroadcastEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "broadcast_events_total",
			Help: "Broadcast events emitted by type",
		},
		[]string{"type"},
	)

	BroadcastRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "broadcast_records_total",
			Help: "Token records pushed to subscribers by event type",
		},
		[]string{"type"},
	)

	WebsocketClientsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricsPrefix + "websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	// API request latency per endpoint
	// Cardinality: ~6 (number of endpoints)
	RequestLatencyHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "request_latency_seconds",
			Help: "HTTP API request latency by endpoint",
		},
		[]string{"endpoint"},
	)

	// API requests by endpoint and status code class
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "requests_total",
			Help: "HTTP API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// Price snapshots written to the history store
	HistorySnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "history_snapshots_total",
			Help: "Price snapshots recorded by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordLimiterStats publishes a limiter snapshot
func RecordLimiterStats(source string, tokens float64, inFlight, queued int) {
	LimiterTokensGauge.WithLabelValues(source).Set(tokens)
	LimiterInFlightGauge.WithLabelValues(source).Set(float64(inFlight))
	LimiterQueueGauge.WithLabelValues(source).Set(float64(queued))
}

// RecordAggregation records one fan-out cycle
func RecordAggregation(outcome string, start time.Time, tokens int) {
	duration := time.Since(start)
	AggregationDurationHistogram.WithLabelValues(outcome).Observe(duration.Seconds())
	AggregatedTokensGauge.Set(float64(tokens))
	log.Debugf("Metrics: aggregation %s took %.2fs with %d tokens", outcome, duration.Seconds(), tokens)
}

// RecordSourceOutcome records whether an adapter call was fulfilled or rejected
func RecordSourceOutcome(source string, fulfilled bool) {
	outcome := "rejected"
	if fulfilled {
		outcome = "fulfilled"
	}
	SourceOutcomesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// SetCacheMode marks mode as the active cache backend
func SetCacheMode(mode string) {
	CacheModeGauge.Reset()
	CacheModeGauge.WithLabelValues(mode).Set(1)
}

// RecordBroadcast records an emitted broadcast event
func RecordBroadcast(eventType string, records int) {
	BroadcastEventsTotal.WithLabelValues(eventType).Inc()
	BroadcastRecordsTotal.WithLabelValues(eventType).Add(float64(records))
}

// SetWebsocketClients records the number of connected websocket clients
func SetWebsocketClients(n int) {
	WebsocketClientsGauge.Set(float64(n))
}

// RecordHistorySnapshots records a history write
func RecordHistorySnapshots(count int, err error) {
	if err != nil {
		HistorySnapshotsTotal.WithLabelValues("error").Add(float64(count))
		return
	}
	HistorySnapshotsTotal.WithLabelValues("success").Add(float64(count))
}

// MetricsWriter records upstream metrics on behalf of one source
type MetricsWriter struct {
	source string
}

// NewMetricsWriter creates a new MetricsWriter for the specified source
func NewMetricsWriter(source string) *MetricsWriter {
	return &MetricsWriter{
		source: source,
	}
}

// RecordRequestLatency records the latency of one upstream operation
func (mw *MetricsWriter) RecordRequestLatency(operation string, duration time.Duration) {
	UpstreamLatencyHistogram.WithLabelValues(mw.source, operation).Observe(duration.Seconds())
}

// OnRequest records an HTTP request with its status
func (mw *MetricsWriter) OnRequest(status string) {
	UpstreamRequestsTotal.WithLabelValues(mw.source, status).Inc()
	log.Debugf("Metrics: %s upstream request recorded with status %s", mw.source, status)
}

// OnRetry records an HTTP retry attempt
func (mw *MetricsWriter) OnRetry() {
	UpstreamRetryCounter.WithLabelValues(mw.source).Inc()
	log.Debugf("Metrics: %s recorded a retry attempt", mw.source)
}
