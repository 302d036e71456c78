// Package middleware contains the per-request authorization gate and the
// helpers handlers use to read the resolved session.
package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/beanie/internal/identity"
	"github.com/example/beanie/internal/models"
)

const (
	principalKey = "currentPrincipal"
	roleKey      = "currentRole"
)

// routeRule protects every path under Prefix, allowing only Roles.
type routeRule struct {
	Prefix string
	Roles  []models.Role
}

var protectedRoutes = []routeRule{
	{Prefix: "/staff", Roles: []models.Role{models.RoleStaff, models.RoleAdmin}},
	{Prefix: "/admin", Roles: []models.Role{models.RoleAdmin}},
}

func (r routeRule) allows(role models.Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// RoleHome is where each role lands after sign-in and where wrong-role
// requests are sent back to.
func RoleHome(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleStaff:
		return "/staff/dashboard"
	}
	return "/menu"
}

// Gate resolves the session once per request, enforces the route protection
// rules and decides redirects. Any credential refreshed during resolution is
// written onto the response before any redirect is constructed, so session
// state survives every response this middleware produces. A redirect whose
// target is the current path degrades to pass-through to avoid loops.
func Gate(ids *identity.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		// The token exchange must not be intercepted.
		if strings.HasPrefix(path, "/auth/callback") {
			return c.Next()
		}

		principal, role, refreshed := ids.Resolve(c.Cookies(identity.CookieName))
		if refreshed != nil {
			identity.ApplyCookie(c, *refreshed)
		}

		if principal != nil {
			c.Locals(principalKey, principal)
		}
		c.Locals(roleKey, role)

		redirect := func(target string) error {
			if target == path {
				return c.Next()
			}
			return c.Redirect(target, fiber.StatusFound)
		}

		if principal != nil && isEntryPath(path) {
			return redirect(RoleHome(role))
		}

		for _, rule := range protectedRoutes {
			if !strings.HasPrefix(path, rule.Prefix) {
				continue
			}
			if principal == nil {
				return redirect("/login?redirect=" + url.QueryEscape(path))
			}
			if !rule.allows(role) {
				return redirect(RoleHome(role))
			}
			break
		}

		return c.Next()
	}
}

// isEntryPath matches the public home/menu pages and the auth pages, which
// signed-in users are steered away from to their role home.
func isEntryPath(path string) bool {
	return path == "/" || path == "/menu" ||
		strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/register")
}

// Principal returns the authenticated principal resolved by the gate.
func Principal(c *fiber.Ctx) (*identity.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*identity.Principal)
	return principal, ok && principal != nil
}

// Role returns the request's resolved role, defaulting to customer.
func Role(c *fiber.Ctx) models.Role {
	if role, ok := c.Locals(roleKey).(models.Role); ok {
		return role
	}
	return models.RoleCustomer
}

// RequireAuth rejects requests without a principal. Used on API routes,
// where a redirect would be wrong.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := Principal(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}

// RequireRoles rejects requests whose role is not in the allowed set.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := Principal(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		current := Role(c)
		for _, role := range roles {
			if role == current {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
	}
}
