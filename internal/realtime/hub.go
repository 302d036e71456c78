// Package realtime fans order change events out to subscribed views: the
// staff queue (unfiltered) and customer order trackers (filtered by id).
package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/example/beanie/internal/models"
)

// EventType labels the row-level change an event describes.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// OrderEvent is one change to an order row.
type OrderEvent struct {
	Type  EventType    `json:"type"`
	Order models.Order `json:"order"`
}

// Subscription delivers events on C until Unsubscribe is called. Callers
// must unsubscribe on teardown; the hub never closes C on its own while the
// subscription is live.
type Subscription struct {
	C <-chan OrderEvent

	id     uint64
	hub    *Hub
	filter *uuid.UUID
	ch     chan OrderEvent
}

// Unsubscribe detaches the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	s.hub.drop(s.id)
}

// Hub is the in-process order event bus.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a listener. A nil filter receives every order event;
// a non-nil filter receives only events for that order id.
func (h *Hub) Subscribe(filter *uuid.UUID) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan OrderEvent, 16)
	sub := &Subscription{C: ch, id: h.nextID, hub: h, filter: filter, ch: ch}
	h.subs[sub.id] = sub
	return sub
}

// Publish delivers the event to every matching subscriber without blocking.
// A subscriber that cannot keep up loses the event; its next read reflects
// whatever arrives afterward.
func (h *Hub) Publish(event OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if sub.filter != nil && *sub.filter != event.Order.ID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			log.Printf("[Realtime] dropping event for slow subscriber %d", sub.id)
		}
	}
}

func (h *Hub) drop(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}
