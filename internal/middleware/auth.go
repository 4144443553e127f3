package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"vocalhire/campaign-api/internal/services"
)

// UserIDKey is the locals key the auth middleware stores the authenticated
// user id under.
const UserIDKey = "userID"

// RequireAuth gates a route behind a valid bearer token and exposes the
// token's user id to downstream handlers.
func RequireAuth(authService services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or malformed authorization header",
			})
		}

		userID, err := authService.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
