package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/aggregator"
	"github.com/status-im/token-aggregator/broadcast"
	"github.com/status-im/token-aggregator/cache"
	"github.com/status-im/token-aggregator/events"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/metrics"
)

// TokenService is the aggregation engine as seen by the handlers
type TokenService interface {
	GetAllWithStatus(ctx context.Context, useCache bool) ([]interfaces.TokenRecord, interfaces.CacheStatus)
	Search(ctx context.Context, query string) []interfaces.TokenRecord
	InvalidateCache(ctx context.Context) int
	SourceStatuses() []aggregator.SourceStatus
}

// Broadcaster delivers update and spike events to websocket clients
type Broadcaster interface {
	Subscribe() *events.Subscription[broadcast.Event]
}

// DiscoveryToggle switches expanded discovery mode at runtime
type DiscoveryToggle interface {
	Expanded() bool
	SetExpanded(expanded bool) bool
}

// CacheReporter exposes cache backend state for /health
type CacheReporter interface {
	Stats() cache.ServiceStats
}

// Services groups the collaborators the server routes to
type Services struct {
	Tokens      TokenService
	Broadcaster Broadcaster
	Discovery   DiscoveryToggle
	Cache       CacheReporter
	Notifier    metrics.Notifier
}

type Server struct {
	port     string
	services Services
	apiKeys  map[string]struct{}
	upgrader websocket.Upgrader
	clients  *clientRegistry
	server   *http.Server
}

// New creates the HTTP server. Mutating endpoints accept only apiKeys; an
// empty list denies them all.
func New(port string, apiKeys []string, services Services) *Server {
	if services.Notifier == nil {
		services.Notifier = metrics.NopNotifier{}
	}

	keys := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		if key != "" {
			keys[key] = struct{}{}
		}
	}

	return &Server{
		port:     port,
		services: services,
		apiKeys:  keys,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: newClientRegistry(),
	}
}

// Router returns the handler serving every endpoint
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/api/tokens", s.instrument("tokens", s.handleTokens)).Methods(http.MethodGet)
	router.HandleFunc("/api/search", s.instrument("search", s.handleSearch)).Methods(http.MethodGet)
	router.HandleFunc("/api/cache/invalidate", s.instrument("cache_invalidate", s.requireAPIKey(s.handleInvalidateCache))).Methods(http.MethodPost)
	router.HandleFunc("/api/discovery/mode", s.instrument("discovery_mode", s.handleGetDiscoveryMode)).Methods(http.MethodGet)
	router.HandleFunc("/api/discovery/mode", s.instrument("discovery_mode", s.requireAPIKey(s.handleSetDiscoveryMode))).Methods(http.MethodPost)

	router.HandleFunc("/ws", s.handleWebSocket)
	router.HandleFunc("/health", s.handleHealth)
	router.Handle("/metrics", promhttp.Handler())

	return router
}

// Start implements core.Interface
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server starting at http://localhost:%s", s.port)
	log.Println("Prometheus metrics available at /metrics endpoint")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server and disconnects websocket clients
func (s *Server) Stop() {
	s.clients.closeAll()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			log.Warnf("Error shutting down server: %v", err)
		}
	}
}
