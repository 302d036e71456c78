package realtime

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UpgradeRequired gates the websocket routes behind a proper upgrade
// request.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// StreamAll pushes every order event to the connection. Staff queue feed.
func StreamAll(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		stream(conn, hub, nil)
	})
}

// StreamOrder pushes events for the order in the :id route param. Customer
// tracking feed.
func StreamOrder(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		orderID, err := uuid.Parse(conn.Params("id"))
		if err != nil {
			_ = conn.WriteJSON(fiber.Map{"error": "invalid order id"})
			return
		}
		stream(conn, hub, &orderID)
	})
}

func stream(conn *websocket.Conn, hub *Hub, filter *uuid.UUID) {
	sub := hub.Subscribe(filter)
	defer sub.Unsubscribe()

	// Reader goroutine: notice the peer closing the connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[Realtime] write failed: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}
