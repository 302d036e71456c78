package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/apperr"
	"github.com/example/beanie/internal/cart"
	"github.com/example/beanie/internal/middleware"
	"github.com/example/beanie/internal/models"
)

// CartHandler exposes the cart engine over HTTP. Prices and names on cart
// lines are frozen from the catalog here, never taken from the client.
type CartHandler struct {
	db    *gorm.DB
	carts *cart.Service
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, carts *cart.Service) *CartHandler {
	return &CartHandler{db: db, carts: carts}
}

func cartPayload(items []cart.Item) fiber.Map {
	if items == nil {
		items = []cart.Item{}
	}
	return fiber.Map{
		"success":    true,
		"items":      items,
		"item_count": cart.ItemCount(items),
		"total":      cart.Round2(cart.Total(items)),
	}
}

// GetCart returns the caller's cart with derived count and total.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "view your cart"}
	}

	return c.JSON(cartPayload(h.carts.Items(principal.ID)))
}

type addCartItemRequest struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	OptionIDs []string `json:"option_ids"`
}

// AddItem builds a cart line from the catalog and adds it to the cart,
// merging with an existing line when product and option set match.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "add to your cart"}
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 1 {
		return &apperr.ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return &apperr.ValidationError{Field: "product_id", Message: "a product is required"}
	}

	var product models.Product
	if err := h.db.Preload("Modifiers.Options").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.ValidationError{Field: "product_id", Message: "product does not exist"}
		}
		return apperr.Persistence("lookup product", err)
	}
	if !product.IsAvailable {
		return &apperr.ValidationError{Field: "product_id", Message: "product is not available"}
	}

	selections, err := resolveSelections(&product, req.OptionIDs)
	if err != nil {
		return err
	}

	candidate := cart.Item{
		ProductID:       product.ID,
		ProductName:     product.Name,
		ProductImageURL: product.ImageURL,
		BasePrice:       product.Price,
		Modifiers:       selections,
		Quantity:        req.Quantity,
	}

	items, err := h.carts.AddItem(principal.ID, candidate)
	if err != nil {
		return apperr.Persistence("save cart", err)
	}

	return c.Status(fiber.StatusCreated).JSON(cartPayload(items))
}

// resolveSelections validates the chosen option ids against the product's
// modifiers and freezes their labels and price adjustments: radio modifiers
// allow at most one selection, required modifiers need at least one.
func resolveSelections(product *models.Product, optionIDs []string) ([]cart.ItemModifier, error) {
	chosen := make(map[uuid.UUID]bool, len(optionIDs))
	for _, raw := range optionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "option_ids", Message: "invalid option id"}
		}
		chosen[id] = true
	}

	var selections []cart.ItemModifier
	matched := 0
	for _, modifier := range product.Modifiers {
		count := 0
		for _, option := range modifier.Options {
			if !chosen[option.ID] {
				continue
			}
			count++
			selections = append(selections, cart.ItemModifier{
				ModifierID:      modifier.ID,
				ModifierName:    modifier.Name,
				OptionID:        option.ID,
				OptionLabel:     option.Label,
				PriceAdjustment: option.PriceAdjustment,
			})
		}

		if modifier.Type == models.ModifierRadio && count > 1 {
			return nil, &apperr.ValidationError{Field: "option_ids",
				Message: modifier.Name + " allows only one choice"}
		}
		if modifier.IsRequired && count == 0 {
			return nil, &apperr.ValidationError{Field: "option_ids",
				Message: modifier.Name + " requires a choice"}
		}
		matched += count
	}

	if matched != len(chosen) {
		return nil, &apperr.ValidationError{Field: "option_ids",
			Message: "option does not belong to this product"}
	}

	return selections, nil
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets a line's quantity; non-positive removes the line.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "update your cart"}
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	items, err := h.carts.UpdateQuantity(principal.ID, c.Params("lineId"), req.Quantity)
	if err != nil {
		return apperr.Persistence("save cart", err)
	}

	return c.JSON(cartPayload(items))
}

// RemoveItem deletes a line; a missing line is not an error.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "update your cart"}
	}

	items, err := h.carts.RemoveItem(principal.ID, c.Params("lineId"))
	if err != nil {
		return apperr.Persistence("save cart", err)
	}

	return c.JSON(cartPayload(items))
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "update your cart"}
	}

	if err := h.carts.Clear(principal.ID); err != nil {
		return apperr.Persistence("save cart", err)
	}

	return c.JSON(cartPayload(nil))
}
