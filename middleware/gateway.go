package middleware

import (
	"crypto/subtle"
	"strings"

	"esports-arena/logger"

	"github.com/gofiber/fiber/v2"
)

// AdminTokenMiddleware guards admin routes with the shared service token sent as a Bearer token.
func AdminTokenMiddleware(expectedToken string, log *logger.Logger) fiber.Handler {
	if expectedToken == "" {
		log.Fatal("❌ ADMIN_SERVICE_TOKEN is not set, admin routes cannot authenticate")
	}
	expected := []byte(expectedToken)

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Warn("🚫 [ADMIN_AUTH] missing Authorization header", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "admin token missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			log.Warn("❌ [ADMIN_AUTH] invalid token", "path", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "invalid admin token",
			})
		}
		return c.Next()
	}
}
