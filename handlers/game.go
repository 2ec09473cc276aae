package handlers

import (
	"esports-arena/logger"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(api fiber.Router, games *services.GameService, log *logger.Logger) {
	api.Get("/games", func(c *fiber.Ctx) error {
		list, err := games.ListGames(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"games": list})
	})

	api.Get("/games/:slug", func(c *fiber.Ctx) error {
		g, err := games.GetGame(c.UserContext(), c.Params("slug"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"game": g, "visuals": services.VisualsFor(g.Name)})
	})

	// ?filter=all|live|upcoming&sort=time|prize|entry
	api.Get("/games/:slug/tournaments", func(c *fiber.Ctx) error {
		g, list, err := games.Tournaments(c.UserContext(), c.Params("slug"), services.GameTournamentsQuery{
			Filter: c.Query("filter", "all"),
			Sort:   c.Query("sort", "time"),
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"game": g, "tournaments": list})
	})
}
