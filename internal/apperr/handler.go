package apperr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps the error taxonomy to HTTP responses. Wire it into
// fiber.Config so handlers can return typed errors directly.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		unauthenticated *UnauthenticatedError
		validation      *ValidationError
		transition      *InvalidTransitionError
		persistence     *PersistenceError
		fiberErr        *fiber.Error
	)

	switch {
	case errors.As(err, &unauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   unauthenticated.Error(),
		})
	case errors.As(err, &validation):
		payload := fiber.Map{"success": false, "error": validation.Message}
		if validation.Field != "" {
			payload["field"] = validation.Field
		}
		return c.Status(fiber.StatusBadRequest).JSON(payload)
	case errors.As(err, &transition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   transition.Error(),
		})
	case errors.As(err, &persistence):
		log.Printf("[Store] %v", persistence)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "temporary storage failure, please retry",
		})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   fiberErr.Message,
		})
	}

	log.Printf("[Server] unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "internal server error",
	})
}
