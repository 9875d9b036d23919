package metrics

import (
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event describes one handled API request
type Event struct {
	Endpoint string
	Status   int
	Duration time.Duration
	Records  int
}

// Notifier receives request events. Notify may silently do nothing on
// failure and never affects request handling.
type Notifier interface {
	Notify(event Event)
}

// PrometheusNotifier records events into the request metrics
type PrometheusNotifier struct {
	failOnce sync.Once
}

// NewPrometheusNotifier creates a notifier backed by the package metrics
func NewPrometheusNotifier() *PrometheusNotifier {
	return &PrometheusNotifier{}
}

// Notify implements Notifier
func (n *PrometheusNotifier) Notify(event Event) {
	defer func() {
		if r := recover(); r != nil {
			n.failOnce.Do(func() {
				log.Warnf("Metrics: notifier failed, further failures are silent: %v", r)
			})
		}
	}()

	RequestLatencyHistogram.WithLabelValues(event.Endpoint).Observe(event.Duration.Seconds())
	RequestsTotal.WithLabelValues(event.Endpoint, strconv.Itoa(event.Status)).Inc()
}

// NopNotifier discards events
type NopNotifier struct{}

// Notify implements Notifier
func (NopNotifier) Notify(Event) {}
