// Package ws fans state-change pings out to browsers over WebSocket and
// Server-Sent Events. The only message is "refresh"; clients then fetch the
// board.
package ws

import (
	"sync"

	"github.com/arcadeline/backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	RefreshMessage = "refresh"
	bufferSize     = 8
)

// Subscriber receives pings on C until it is unsubscribed.
type Subscriber struct {
	C chan string
}

// Hub maintains the set of active subscribers
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	metrics     *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		metrics:     m,
	}
}

func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{C: make(chan string, bufferSize)}
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	n := len(h.subscribers)
	h.mu.Unlock()
	h.metrics.SetSubscribers(n)
	log.Debug().Str("component", "ws").Int("subscribers", n).Msg("subscriber joined")
	return s
}

// Unsubscribe removes s and closes its channel. Calling it twice is safe.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subscribers, s)
	close(s.C)
	n := len(h.subscribers)
	h.mu.Unlock()
	h.metrics.SetSubscribers(n)
}

// Broadcast queues a refresh ping for every subscriber without blocking.
// Subscribers whose buffer is full miss this ping.
func (h *Hub) Broadcast() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subscribers {
		select {
		case s.C <- RefreshMessage:
		default:
			h.metrics.PingDropped()
		}
	}
}

// Notify makes the hub usable directly as the game manager's notifier.
func (h *Hub) Notify() {
	h.Broadcast()
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
