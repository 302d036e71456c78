package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/apperr"
	"github.com/example/beanie/internal/models"
	"github.com/example/beanie/internal/realtime"
	"github.com/example/beanie/internal/utils"
)

// QueueHandler serves the staff order queue and applies status transitions.
type QueueHandler struct {
	db   *gorm.DB
	hub  *realtime.Hub
	view *realtime.QueueView
}

// NewQueueHandler constructs QueueHandler. view is the hub-fed merged state
// backing the live queue endpoint.
func NewQueueHandler(db *gorm.DB, hub *realtime.Hub, view *realtime.QueueView) *QueueHandler {
	return &QueueHandler{db: db, hub: hub, view: view}
}

// ListOrders returns orders across all customers, optionally filtered by
// status, oldest first so the queue reads top-down.
func (h *QueueHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		if !models.OrderStatus(status).Valid() {
			return &apperr.ValidationError{Field: "status", Message: "unknown status"}
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return apperr.Persistence("count orders", err)
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Customer").
		Order("created_at asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return apperr.Persistence("list orders", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// LiveQueue returns the event-fed queue state: every order seen on the
// feed since the process started, the most recent event per order winning.
// It reflects the feed, not the database; ListOrders stays the
// authoritative read for history and cold starts.
func (h *QueueHandler) LiveQueue(c *fiber.Ctx) error {
	orders := h.view.Orders()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus applies a lifecycle transition. Re-applying the order's
// current status is a no-op success so concurrent duplicate requests (two
// staff clicking "start" at once) are safe to retry; anything else outside
// the transition table fails and leaves the row untouched.
func (h *QueueHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	target := models.OrderStatus(req.Status)
	if !target.Valid() {
		return &apperr.ValidationError{Field: "status", Message: "unknown status"}
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return apperr.Persistence("lookup order", err)
	}

	if order.Status == target {
		return c.JSON(fiber.Map{"success": true, "data": order})
	}

	if !order.Status.CanTransitionTo(target) {
		return &apperr.InvalidTransitionError{From: string(order.Status), To: string(target)}
	}

	// Optimistic update: only move the row if it is still in the status
	// we validated against.
	res := h.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, order.Status).
		Update("status", target)
	if res.Error != nil {
		return apperr.Persistence("update order status", res.Error)
	}

	if res.RowsAffected == 0 {
		// Lost a race. Re-read: if the other writer applied the same
		// target the retry is a no-op, otherwise the transition is no
		// longer legal.
		if err := h.db.First(&order, "id = ?", id).Error; err != nil {
			return apperr.Persistence("lookup order", err)
		}
		if order.Status == target {
			return c.JSON(fiber.Map{"success": true, "data": order})
		}
		return &apperr.InvalidTransitionError{From: string(order.Status), To: string(target)}
	}

	order.Status = target
	h.hub.Publish(realtime.OrderEvent{Type: realtime.EventUpdate, Order: order})

	return c.JSON(fiber.Map{"success": true, "data": order})
}
