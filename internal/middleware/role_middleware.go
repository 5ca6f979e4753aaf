package middleware

import (
	"github.com/arzan03/wastetrack/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireRoles admits sessions whose role is in roles. It must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := SessionFrom(c)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}
		if !session.Role.In(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}

// AdminOnly ensures that only users with "admin" role can access admin routes
func AdminOnly() fiber.Handler {
	return RequireRoles(models.RoleAdmin)
}
