package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/broadcast"
	"github.com/status-im/token-aggregator/events"
	"github.com/status-im/token-aggregator/interfaces"
	"github.com/status-im/token-aggregator/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// Client message types
const (
	messageSubscribe  = "subscribe"
	messageSubscribed = "subscribed"
	messagePing       = "ping"
	messagePong       = "pong"
	messageError      = "error"
)

// ClientMessage is sent by websocket clients
type ClientMessage struct {
	Type    string                 `json:"type"`
	Filters *interfaces.FilterSpec `json:"filters,omitempty"`
}

// ControlMessage acknowledges client messages
type ControlMessage struct {
	Type    string                 `json:"type"`
	Filters *interfaces.FilterSpec `json:"filters,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type wsClient struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex

	// filters are recorded but broadcasts are not narrowed by them
	filters *interfaces.FilterSpec
}

func (c *wsClient) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *wsClient) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

type clientRegistry struct {
	mu      sync.Mutex
	clients map[string]*wsClient
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{clients: make(map[string]*wsClient)}
}

func (r *clientRegistry) add(c *wsClient) {
	r.mu.Lock()
	r.clients[c.id] = c
	n := len(r.clients)
	r.mu.Unlock()
	metrics.SetWebsocketClients(n)
}

func (r *clientRegistry) remove(c *wsClient) {
	r.mu.Lock()
	delete(r.clients, c.id)
	n := len(r.clients)
	r.mu.Unlock()
	metrics.SetWebsocketClients(n)
}

func (r *clientRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *clientRegistry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		c.conn.Close()
	}
}

// handleWebSocket pushes the full token list on connect, then every
// update and spike batch until the client disconnects
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		log.Warnf("WS: upgrade failed: %v", err)
		return
	}

	client := &wsClient{id: uuid.NewString(), conn: conn}
	s.clients.add(client)
	defer func() {
		s.clients.remove(client)
		conn.Close()
		log.Debugf("WS: client %s disconnected", client.id)
	}()
	log.Debugf("WS: client %s connected from %s", client.id, r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before building the snapshot so events emitted meanwhile
	// are buffered and delivered right after it
	var sub *events.Subscription[broadcast.Event]
	if s.services.Broadcaster != nil {
		sub = s.services.Broadcaster.Subscribe()
		defer sub.Cancel()
	}

	records, _ := s.services.Tokens.GetAllWithStatus(ctx, true)
	if err := client.writeJSON(broadcast.Event{Type: broadcast.EventInitial, Data: records}); err != nil {
		log.Warnf("WS: failed to send initial snapshot to %s: %v", client.id, err)
		return
	}

	if sub != nil {
		sub.Watch(ctx, func(event broadcast.Event) {
			if err := client.writeJSON(event); err != nil {
				log.Debugf("WS: write to %s failed: %v", client.id, err)
				conn.Close()
			}
		})
	}

	go s.keepAlive(ctx, client)
	s.readLoop(client)
}

func (s *Server) keepAlive(ctx context.Context, client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.ping(); err != nil {
				client.conn.Close()
				return
			}
		}
	}
}

// readLoop handles client messages until the connection fails
func (s *Server) readLoop(client *wsClient) {
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("WS: read from %s failed: %v", client.id, err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := client.writeJSON(s.handleClientMessage(client, data)); err != nil {
			return
		}
	}
}

func (s *Server) handleClientMessage(client *wsClient, data []byte) ControlMessage {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ControlMessage{Type: messageError, Error: "invalid JSON message"}
	}

	switch msg.Type {
	case messageSubscribe:
		if msg.Filters != nil && msg.Filters.Period != "" {
			if _, err := interfaces.ParseTimePeriod(string(msg.Filters.Period)); err != nil {
				return ControlMessage{Type: messageError, Error: err.Error()}
			}
		}
		client.filters = msg.Filters
		return ControlMessage{Type: messageSubscribed, Filters: msg.Filters}
	case messagePing:
		return ControlMessage{Type: messagePong}
	}

	return ControlMessage{Type: messageError, Error: "unknown message type " + msg.Type}
}
