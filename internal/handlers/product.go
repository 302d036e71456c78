package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/apperr"
	"github.com/example/beanie/internal/models"
)

// ProductHandler manages the product catalog.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns products ordered by name, optionally filtered by
// category.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	query := h.db.Model(&models.Product{}).Preload("Category").Order("name asc")

	if category := c.Query("category"); category != "" {
		categoryID, err := uuid.Parse(category)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
		}
		query = query.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return apperr.Persistence("list products", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": products})
}

// GetProduct returns one product with its modifiers and their options.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Category").Preload("Modifiers.Options").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return apperr.Persistence("lookup product", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    string   `json:"image_url"`
	CategoryID  string   `json:"category_id"`
	IsAvailable *bool    `json:"is_available"`
	ModifierIDs []string `json:"modifier_ids"`
}

func (h *ProductHandler) validate(req *productRequest) (uuid.UUID, error) {
	if strings.TrimSpace(req.Name) == "" {
		return uuid.Nil, &apperr.ValidationError{Field: "name", Message: "name is required"}
	}
	if req.Price == nil {
		return uuid.Nil, &apperr.ValidationError{Field: "price", Message: "price is required"}
	}
	if *req.Price < 0 {
		return uuid.Nil, &apperr.ValidationError{Field: "price", Message: "price cannot be negative"}
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return uuid.Nil, &apperr.ValidationError{Field: "category_id", Message: "a category is required"}
	}

	var count int64
	if err := h.db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return uuid.Nil, apperr.Persistence("lookup category", err)
	}
	if count == 0 {
		return uuid.Nil, &apperr.ValidationError{Field: "category_id", Message: "category does not exist"}
	}

	return categoryID, nil
}

func (h *ProductHandler) modifiers(ids []string) ([]models.Modifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "modifier_ids", Message: "invalid modifier id"}
		}
		parsed = append(parsed, id)
	}

	var modifiers []models.Modifier
	if err := h.db.Where("id IN ?", parsed).Find(&modifiers).Error; err != nil {
		return nil, apperr.Persistence("lookup modifiers", err)
	}
	if len(modifiers) != len(parsed) {
		return nil, &apperr.ValidationError{Field: "modifier_ids", Message: "unknown modifier"}
	}
	return modifiers, nil
}

// CreateProduct persists a new product. Admin only.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	categoryID, err := h.validate(&req)
	if err != nil {
		return err
	}

	modifiers, err := h.modifiers(req.ModifierIDs)
	if err != nil {
		return err
	}

	product := models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
		CategoryID:  categoryID,
		IsAvailable: true,
		Modifiers:   modifiers,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Create(&product).Error; err != nil {
		return apperr.Persistence("create product", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct replaces the mutable fields of a product. Admin only.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return apperr.Persistence("lookup product", err)
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	categoryID, err := h.validate(&req)
	if err != nil {
		return err
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Price = *req.Price
	product.ImageURL = req.ImageURL
	product.CategoryID = categoryID
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Save(&product).Error; err != nil {
		return apperr.Persistence("update product", err)
	}

	if req.ModifierIDs != nil {
		modifiers, err := h.modifiers(req.ModifierIDs)
		if err != nil {
			return err
		}
		if err := h.db.Model(&product).Association("Modifiers").Replace(modifiers); err != nil {
			return apperr.Persistence("update product modifiers", err)
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product. Admin only.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return apperr.Persistence("delete product", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
