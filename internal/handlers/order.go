package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/apperr"
	"github.com/example/beanie/internal/cart"
	"github.com/example/beanie/internal/middleware"
	"github.com/example/beanie/internal/models"
	"github.com/example/beanie/internal/realtime"
	"github.com/example/beanie/internal/services"
	"github.com/example/beanie/internal/utils"
)

// OrderHandler manages checkout and customer order reads.
type OrderHandler struct {
	db       *gorm.DB
	carts    *cart.Service
	hub      *realtime.Hub
	telegram *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, carts *cart.Service, hub *realtime.Hub, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{db: db, carts: carts, hub: hub, telegram: telegram}
}

// CreateOrder turns the caller's cart into a persisted order. Pricing runs
// through the same functions as the live cart display; each item's unit
// price is frozen at order time. The write is two-step: the order row, then
// the item rows, with a best-effort compensating delete when the second
// step fails.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "place an order"}
	}

	items := h.carts.Items(principal.ID)
	if len(items) == 0 {
		return apperr.ErrEmptyCart
	}

	order := models.Order{
		CustomerID: principal.ID,
		Status:     models.StatusPending,
		Total:      cart.Round2(cart.Total(items)),
		PickupCode: h.generatePickupCode(),
	}
	if err := h.db.Create(&order).Error; err != nil {
		return apperr.Persistence("create order", err)
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		productID := item.ProductID
		selected := make(models.SelectedModifiers, 0, len(item.Modifiers))
		for _, m := range item.Modifiers {
			selected = append(selected, models.SelectedModifier{
				ModifierID:      m.ModifierID,
				ModifierName:    m.ModifierName,
				OptionID:        m.OptionID,
				OptionLabel:     m.OptionLabel,
				PriceAdjustment: m.PriceAdjustment,
			})
		}
		orderItems = append(orderItems, models.OrderItem{
			OrderID:           order.ID,
			ProductID:         &productID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPrice:         cart.Round2(cart.UnitPrice(item)),
			SelectedModifiers: selected,
		})
	}

	if err := h.db.Create(&orderItems).Error; err != nil {
		// Compensate so an empty order row is not left behind. If the
		// compensation itself fails the orphan must reach the operator
		// log, not vanish.
		if cleanupErr := h.db.Delete(&models.Order{}, "id = ?", order.ID).Error; cleanupErr != nil {
			warning := &apperr.DataIntegrityWarning{
				Detail: fmt.Sprintf("orphaned order %s has no items", order.ID),
				Cause:  err,
				Err:    cleanupErr,
			}
			log.Printf("[Order] %v", warning)
		}
		return apperr.Persistence("create order items", err)
	}
	order.Items = orderItems

	if err := h.carts.Clear(principal.ID); err != nil {
		log.Printf("[Order] failed to clear cart for %s: %v", principal.ID, err)
	}

	h.hub.Publish(realtime.OrderEvent{Type: realtime.EventInsert, Order: order})
	go h.notifyStaff(order, principal.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          order.ID,
			"status":      order.Status,
			"total":       order.Total,
			"pickup_code": order.PickupCode,
			"created_at":  order.CreatedAt,
		},
	})
}

func (h *OrderHandler) notifyStaff(order models.Order, customerID uuid.UUID) {
	var profile models.Profile
	customerName := ""
	if err := h.db.First(&profile, "id = ?", customerID).Error; err == nil {
		customerName = profile.FullName
	}

	notification := services.OrderNotification{
		OrderID:      order.ID.String(),
		PickupCode:   order.PickupCode,
		CustomerName: customerName,
		Total:        order.Total,
	}
	for _, item := range order.Items {
		notification.Items = append(notification.Items, services.OrderItemNotification{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if err := h.telegram.NotifyNewOrder(notification); err != nil {
		log.Printf("[Order] staff notification failed for %s: %v", order.ID, err)
	}
}

// ListOrders returns the caller's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "view your orders"}
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{}).Where("customer_id = ?", principal.ID)

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
	if err := query.Preload("Items").
		Order("created_at desc").
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

// GetOrder returns one of the caller's orders with its progress step for
// the tracking view. Staff and admins may fetch any order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "view this order"}
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query := h.db.Preload("Items")
	if !middleware.Role(c).CanManageOrders() {
		query = query.Where("customer_id = ?", principal.ID)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return apperr.Persistence("lookup order", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
		"progress": fiber.Map{
			"step":      order.Status.StepIndex(),
			"cancelled": order.Status == models.StatusCancelled,
		},
	})
}

// generatePickupCode draws a random 4-digit code, retrying a few times when
// the candidate collides with another active (non-terminal) order. After
// the retries a collision is accepted; codes only disambiguate orders at
// the counter.
func (h *OrderHandler) generatePickupCode() string {
	var code string
	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			continue
		}
		code = fmt.Sprintf("%04d", n.Int64()+1000)

		var count int64
		err = h.db.Model(&models.Order{}).
			Where("pickup_code = ? AND status IN ?", code,
				[]models.OrderStatus{models.StatusPending, models.StatusInProgress}).
			Count(&count).Error
		if err == nil && count == 0 {
			return code
		}
	}
	return code
}
