package realtime

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/example/beanie/internal/models"
)

// QueueView is the receiving side of the feed: a local order list kept
// current by merging incoming events keyed by order id. Each event is
// treated as the new authoritative state for its id, so duplicates and
// out-of-order delivery are tolerated by last-arrival-wins. Known gap: a
// stale event arriving after a fresher one overwrites it; the transport
// does not guarantee ordering and this view does not try to repair it.
type QueueView struct {
	mu     sync.Mutex
	orders map[uuid.UUID]models.Order
}

func NewQueueView() *QueueView {
	return &QueueView{orders: make(map[uuid.UUID]models.Order)}
}

// Apply merges one event into the view.
func (v *QueueView) Apply(event OrderEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.orders[event.Order.ID] = event.Order
}

// Orders returns the merged state, oldest order first.
func (v *QueueView) Orders() []models.Order {
	v.mu.Lock()
	defer v.mu.Unlock()

	orders := make([]models.Order, 0, len(v.orders))
	for _, order := range v.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders
}

// Run consumes a subscription until its channel closes, merging every
// delivered event. Intended to run on its own goroutine.
func (v *QueueView) Run(sub *Subscription) {
	for event := range sub.C {
		v.Apply(event)
	}
}
