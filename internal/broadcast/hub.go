// Package broadcast normalizes and fans out typed state-change events to
// real-time subscribers. Delivery is fire-and-forget: no acknowledgement, no
// queuing, and events emitted with zero subscribers are dropped.
package broadcast

import (
	"errors"
	"sync"
	"time"

	apperrors "github.com/lhyssy/AI-Agent-code-web/internal/errors"
	"github.com/lhyssy/AI-Agent-code-web/internal/logging"
)

// errBufferFull marks a subscriber whose channel could not accept an event.
var errBufferFull = errors.New("subscriber buffer full")

// Event is one typed state-change notification.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Emitter is the contract the orchestrator and services depend on. The hub
// implements it; tests substitute a recording fake.
type Emitter interface {
	Emit(eventType string, payload map[string]any)
}

// defaultBufferSize is the per-subscriber channel capacity. A subscriber that
// falls this far behind starts losing events rather than blocking emitters.
const defaultBufferSize = 64

// Metrics is a snapshot of hub delivery counters.
type Metrics struct {
	EventsSent         int64
	EventsDropped      int64
	ActiveSubscribers  int
	TotalSubscriptions int64
}

// Hub fans out events to all currently connected subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	bufferSize  int
	logger      logging.Logger

	metricsMu          sync.Mutex
	eventsSent         int64
	eventsDropped      int64
	totalSubscriptions int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]chan Event),
		bufferSize:  defaultBufferSize,
		logger:      logging.NewComponentLogger("Broadcast"),
	}
}

// Subscribe registers a subscriber and returns its event channel. An existing
// subscription under the same id is replaced and its channel closed.
func (h *Hub) Subscribe(id string) <-chan Event {
	ch := make(chan Event, h.bufferSize)

	h.mu.Lock()
	if old, ok := h.subscribers[id]; ok {
		close(old)
	}
	h.subscribers[id] = ch
	h.mu.Unlock()

	h.metricsMu.Lock()
	h.totalSubscriptions++
	h.metricsMu.Unlock()

	h.logger.Debug("subscriber %s connected", id)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	h.logger.Debug("subscriber %s disconnected", id)
}

// Emit delivers an event to every connected subscriber. The payload gets a
// server-assigned timestamp if the caller omitted one. Unrecognized event
// types pass through verbatim under their own name. A full subscriber buffer
// loses the event; that is logged and never propagated to the caller.
func (h *Hub) Emit(eventType string, payload map[string]any) {
	event := Event{Type: eventType, Payload: normalize(payload)}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
			h.metricsMu.Lock()
			h.eventsSent++
			h.metricsMu.Unlock()
		default:
			h.metricsMu.Lock()
			h.eventsDropped++
			h.metricsMu.Unlock()
			dropErr := &apperrors.BroadcastError{Subscriber: id, Err: errBufferFull}
			h.logger.Warn("dropping %s event: %v", eventType, dropErr)
		}
	}
}

// SubscriberCount returns the number of currently connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Snapshot returns current delivery counters.
func (h *Hub) Snapshot() Metrics {
	active := h.SubscriberCount()

	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	return Metrics{
		EventsSent:         h.eventsSent,
		EventsDropped:      h.eventsDropped,
		ActiveSubscribers:  active,
		TotalSubscriptions: h.totalSubscriptions,
	}
}

// normalize copies the payload and assigns a timestamp when missing, so the
// caller's map is never mutated and every delivered event carries one.
func normalize(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	if _, ok := out["timestamp"]; !ok {
		out["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	return out
}
