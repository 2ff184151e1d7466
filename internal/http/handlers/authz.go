package handlers

import (
	"strings"

	applog "paperback/internal/log"
	"paperback/internal/services"

	"github.com/gofiber/fiber/v2"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	// Websocket clients can't always set headers; allow a query fallback.
	return c.Query("token")
}

// Authenticate requires a valid bearer token and stashes the claims.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return fail(c, fiber.StatusUnauthorized, "missing token")
		}
		claims, err := auth.ParseToken(c.Context(), tok)
		if err != nil {
			applog.Security(c, "auth.token.invalid", nil)
			return fail(c, fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals("uid", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != "admin" {
			applog.Security(c, "access.denied.admin", nil)
			return fail(c, fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

func uid(c *fiber.Ctx) string {
	id, _ := c.Locals("uid").(string)
	return id
}
