package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/beanie/internal/apperr"
	"github.com/example/beanie/internal/identity"
	"github.com/example/beanie/internal/middleware"
	"github.com/example/beanie/internal/models"
	"github.com/example/beanie/internal/utils"
)

const minPasswordLength = 6

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	ids *identity.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, ids *identity.Service) *AuthHandler {
	return &AuthHandler{db: db, ids: ids}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account with the customer role and signs it in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return &apperr.ValidationError{Field: "email", Message: "a valid email is required"}
	}
	if len(req.Password) < minPasswordLength {
		return &apperr.ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	if strings.TrimSpace(req.FullName) == "" {
		return &apperr.ValidationError{Field: "full_name", Message: "name is required"}
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return &apperr.ValidationError{Field: "email", Message: "an account with this email already exists"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Persistence("lookup user", err)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{Email: req.Email, PasswordHash: passwordHash}
	if err := h.db.Create(&user).Error; err != nil {
		return apperr.Persistence("create user", err)
	}

	profile := models.Profile{
		ID:       user.ID,
		FullName: strings.TrimSpace(req.FullName),
		Role:     models.RoleCustomer,
	}
	if err := h.db.Create(&profile).Error; err != nil {
		return apperr.Persistence("create profile", err)
	}

	cred, err := h.ids.Issue(user.ID, user.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create session")
	}
	identity.ApplyCookie(c, cred)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": profile.FullName,
			"role":      profile.Role,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user and sets the session cookie. The
// response includes the target the client should navigate to: the redirect
// query parameter when present, the role home otherwise.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return apperr.Persistence("lookup user", err)
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	cred, err := h.ids.Issue(user.ID, user.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create session")
	}
	identity.ApplyCookie(c, cred)

	var profile models.Profile
	role := models.RoleCustomer
	if err := h.db.First(&profile, "id = ?", user.ID).Error; err == nil && profile.Role.Valid() {
		role = profile.Role
	}

	target := c.Query("redirect")
	if target == "" || !strings.HasPrefix(target, "/") {
		target = middleware.RoleHome(role)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": profile.FullName,
			"role":      role,
		},
		"redirect": target,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity.ClearCookie(c)
	return c.JSON(fiber.Map{"success": true})
}

// Callback completes an externally-initiated sign-in by exchanging the code
// for a session. The gate never intercepts this route. A missing profile is
// created here as a safety net so role resolution has a row to read.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		description := c.Query("error_description")
		if description == "" {
			description = errParam
		}
		return c.Redirect("/login?error="+url.QueryEscape(description), fiber.StatusFound)
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect("/login", fiber.StatusFound)
	}

	userID, email, err := h.ids.ExchangeCode(code)
	if err != nil {
		return c.Redirect("/login?error="+url.QueryEscape("sign-in could not be completed"), fiber.StatusFound)
	}

	var profile models.Profile
	if err := h.db.First(&profile, "id = ?", userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Persistence("lookup profile", err)
		}
		profile = models.Profile{ID: userID, FullName: email, Role: models.RoleCustomer}
		if err := h.db.Create(&profile).Error; err != nil {
			return apperr.Persistence("create profile", err)
		}
	}

	cred, err := h.ids.Issue(userID, email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create session")
	}
	identity.ApplyCookie(c, cred)

	return c.Redirect("/menu", fiber.StatusFound)
}
