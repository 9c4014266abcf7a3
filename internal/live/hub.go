// Package live fans "ratings changed" notifications out to connected viewers.
package live

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types sent to subscribers.
const (
	EventConnected = "connected"
	EventUpdate    = "update"
)

// subscriberBuffer is how many undelivered events a slow viewer may queue
// before further events are dropped for it.
const subscriberBuffer = 8

// Event is the JSON payload written to every stream.
type Event struct {
	Type string `json:"type"`
	Time int64  `json:"time,omitempty"` // unix millis
}

// UpdateEvent stamps an update with the current server time.
func UpdateEvent(now time.Time) Event {
	return Event{Type: EventUpdate, Time: now.UnixMilli()}
}

// Subscriber is one viewer's inbox. Events is closed when the subscriber is
// removed from the hub.
type Subscriber struct {
	ID     uuid.UUID
	Events <-chan Event

	ch chan Event
}

// Hub is a concurrency-safe registry of subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscriber
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]*Subscriber)}
}

// Subscribe registers a new viewer. Its first event is always "connected".
func (h *Hub) Subscribe() *Subscriber {
	ch := make(chan Event, subscriberBuffer)
	ch <- Event{Type: EventConnected}
	s := &Subscriber{ID: uuid.New(), Events: ch, ch: ch}

	h.mu.Lock()
	h.subs[s.ID] = s
	h.mu.Unlock()
	return s
}

// Unsubscribe removes a viewer and closes its channel. Removing an unknown
// or already-removed ID is a no-op.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(s.ch)
	}
}

// Broadcast queues ev for every subscriber without blocking. A subscriber
// whose buffer is full misses the event. It returns how many subscribers
// accepted the event.
func (h *Hub) Broadcast(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, s := range h.subs {
		select {
		case s.ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// NotifyRatingsChanged broadcasts an update stamped with the current time.
func (h *Hub) NotifyRatingsChanged() {
	h.Broadcast(UpdateEvent(time.Now()))
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
