package realtime_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/beanie/internal/models"
	"github.com/example/beanie/internal/realtime"
)

func orderEvent(t realtime.EventType, id uuid.UUID, status models.OrderStatus) realtime.OrderEvent {
	order := models.Order{Status: status}
	order.ID = id
	return realtime.OrderEvent{Type: t, Order: order}
}

func TestHubFanout(t *testing.T) {
	hub := realtime.NewHub()
	a := hub.Subscribe(nil)
	b := hub.Subscribe(nil)
	defer a.Unsubscribe()
	defer b.Unsubscribe()

	id := uuid.New()
	hub.Publish(orderEvent(realtime.EventInsert, id, models.StatusPending))

	for _, sub := range []*realtime.Subscription{a, b} {
		event := <-sub.C
		assert.Equal(t, realtime.EventInsert, event.Type)
		assert.Equal(t, id, event.Order.ID)
	}
}

func TestHubFilterByOrderID(t *testing.T) {
	hub := realtime.NewHub()

	mine := uuid.New()
	other := uuid.New()

	sub := hub.Subscribe(&mine)
	defer sub.Unsubscribe()

	hub.Publish(orderEvent(realtime.EventUpdate, other, models.StatusInProgress))
	hub.Publish(orderEvent(realtime.EventUpdate, mine, models.StatusComplete))

	event := <-sub.C
	assert.Equal(t, mine, event.Order.ID)
	assert.Equal(t, models.StatusComplete, event.Order.Status)
	assert.Empty(t, sub.C, "filtered-out event must not be delivered")
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe(nil)

	sub.Unsubscribe()

	_, open := <-sub.C
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	hub.Publish(orderEvent(realtime.EventInsert, uuid.New(), models.StatusPending))
}

func TestQueueViewLastArrivalWins(t *testing.T) {
	view := realtime.NewQueueView()
	id := uuid.New()

	view.Apply(orderEvent(realtime.EventInsert, id, models.StatusPending))
	view.Apply(orderEvent(realtime.EventUpdate, id, models.StatusInProgress))
	// Duplicate delivery of the same update.
	view.Apply(orderEvent(realtime.EventUpdate, id, models.StatusInProgress))

	orders := view.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusInProgress, orders[0].Status)

	// Out-of-order (stale) arrival still wins by arrival order.
	view.Apply(orderEvent(realtime.EventUpdate, id, models.StatusPending))
	assert.Equal(t, models.StatusPending, view.Orders()[0].Status)
}

func TestQueueViewMultipleOrders(t *testing.T) {
	view := realtime.NewQueueView()

	first := uuid.New()
	second := uuid.New()
	view.Apply(orderEvent(realtime.EventInsert, first, models.StatusPending))
	view.Apply(orderEvent(realtime.EventInsert, second, models.StatusPending))

	assert.Len(t, view.Orders(), 2)
}
