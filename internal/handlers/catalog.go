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

// CatalogHandler manages categories and modifiers.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListCategories returns all categories in display order.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.db.Order("display_order asc").Find(&categories).Error; err != nil {
		return apperr.Persistence("list categories", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

type categoryRequest struct {
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

// CreateCategory persists a new category. Admin only.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return &apperr.ValidationError{Field: "name", Message: "name is required"}
	}

	category := models.Category{Name: strings.TrimSpace(req.Name), DisplayOrder: req.DisplayOrder}
	if err := h.db.Create(&category).Error; err != nil {
		return apperr.Persistence("create category", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates name and display order.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return apperr.Persistence("lookup category", err)
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return &apperr.ValidationError{Field: "name", Message: "name is required"}
	}

	category.Name = strings.TrimSpace(req.Name)
	category.DisplayOrder = req.DisplayOrder
	if err := h.db.Save(&category).Error; err != nil {
		return apperr.Persistence("update category", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category by ID. Admin only.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return apperr.Persistence("delete category", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListModifiers returns all modifiers with their options.
func (h *CatalogHandler) ListModifiers(c *fiber.Ctx) error {
	var modifiers []models.Modifier
	if err := h.db.Preload("Options").Order("name asc").Find(&modifiers).Error; err != nil {
		return apperr.Persistence("list modifiers", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": modifiers})
}
