package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"multiplicadores/internal/service"
)

const (
	// AuthUsernameLocalKey stores the authenticated username in locals.
	AuthUsernameLocalKey = "auth_username"
	// AuthRoleLocalKey stores the authenticated role in locals.
	AuthRoleLocalKey = "auth_role"
)

// RequireAuth guards a route group with bearer-token authentication.
// Responses follow the original unauthorized contract with distinct
// messages for missing, expired and invalid tokens.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c, "Missing Bearer token")
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := auth.VerifyToken(token)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				return unauthorized(c, "Token expired")
			}
			return unauthorized(c, "Invalid token")
		}

		c.Locals(AuthUsernameLocalKey, claims.Subject)
		c.Locals(AuthRoleLocalKey, claims.Role)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "unauthorized",
		"message": message,
	})
}
