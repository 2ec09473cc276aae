package handlers

import (
	"esports-arena/logger"
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSpinRoutes(api fiber.Router, spin *services.SpinService, guards Guards, log *logger.Logger) {
	api.Get("/spin", guards.RequireSession, func(c *fiber.Ctx) error {
		status, err := spin.Status(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(status)
	})

	api.Post("/spin", guards.RequireSession, guards.RateLimit, func(c *fiber.Ctx) error {
		out, err := spin.Spin(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(out)
	})
}
