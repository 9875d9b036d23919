package events

import (
	"context"
	"sync"
)

// Subscription receives the events of one Hub subscriber
type Subscription[T any] struct {
	ch     chan T
	hub    *Hub[T]
	cancel context.CancelFunc
	once   sync.Once
}

// Chan returns a read-only channel for self-handling events.
// It is closed when the subscription is cancelled.
func (s *Subscription[T]) Chan() <-chan T { return s.ch }

// Cancel unsubscribes and closes the channel. Safe for repeated calls.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.hub.Unsubscribe(s.ch)
	})
}

// Watch starts a goroutine that calls cb for each event.
// When parentCtx finishes, the subscription is automatically cancelled.
func (s *Subscription[T]) Watch(parentCtx context.Context, cb func(T)) *Subscription[T] {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	go func(ctx context.Context) {
		defer s.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-s.ch:
				if !ok {
					return
				}
				cb(event)
			}
		}
	}(ctx)

	return s
}

// Hub fans typed events out to subscribers. Delivery is non-blocking: a
// subscriber whose buffer is full misses the event.
type Hub[T any] struct {
	mu          sync.RWMutex
	subscribers map[chan T]struct{}
	buffer      int
}

// NewHub creates a hub whose subscribers buffer up to buffer events
func NewHub[T any](buffer int) *Hub[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub[T]{
		subscribers: make(map[chan T]struct{}),
		buffer:      buffer,
	}
}

// Subscribe creates a new subscription
func (h *Hub[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return &Subscription[T]{ch: ch, hub: h}
}

// Unsubscribe removes a subscription by its channel
func (h *Hub[T]) Unsubscribe(ch chan T) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Emit sends event to all subscribers and returns how many received it
func (h *Hub[T]) Emit(ctx context.Context, event T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subscribers {
		select {
		case <-ctx.Done():
			return delivered
		case sub <- event:
			delivered++
		default:
			// Subscriber is not keeping up
		}
	}
	return delivered
}

// Len returns the number of subscribers
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
