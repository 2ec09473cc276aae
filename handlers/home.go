package handlers

import (
	"esports-arena/logger"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupHomeRoutes(api fiber.Router, home *services.HomeService, log *logger.Logger) {
	api.Get("/home", func(c *fiber.Ctx) error {
		overview, err := home.Overview(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(overview)
	})
}
