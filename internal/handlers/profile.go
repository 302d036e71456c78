package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/apperr"
	"github.com/example/beanie/internal/middleware"
	"github.com/example/beanie/internal/models"
)

// ProfileHandler manages account settings.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the caller's profile, creating the default customer
// row when registration's insert never happened.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "view your account"}
	}

	var profile models.Profile
	err := h.db.First(&profile, "id = ?", principal.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{ID: principal.ID, FullName: principal.Email, Role: models.RoleCustomer}
		if err := h.db.Create(&profile).Error; err != nil {
			return apperr.Persistence("create profile", err)
		}
	} else if err != nil {
		return apperr.Persistence("lookup profile", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
}

// UpdateProfile changes the display name. Role changes go through
// administration, not this endpoint.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return &apperr.UnauthenticatedError{Action: "update your account"}
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return &apperr.ValidationError{Field: "full_name", Message: "name is required"}
	}

	if err := h.db.Model(&models.Profile{}).
		Where("id = ?", principal.ID).
		Update("full_name", fullName).Error; err != nil {
		return apperr.Persistence("update profile", err)
	}

	var profile models.Profile
	if err := h.db.First(&profile, "id = ?", principal.ID).Error; err != nil {
		return apperr.Persistence("lookup profile", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}
