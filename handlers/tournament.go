package handlers

import (
	"esports-arena/logger"
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

// joinRequest may be empty; a missing game account is reported by the eligibility checks in order.
type joinRequest struct {
	GameAccountID string `json:"game_account_id"`
}

func SetupTournamentRoutes(api fiber.Router, tournaments *services.TournamentService, join *services.JoinService, guards Guards, log *logger.Logger) {
	// 🔓 Public, session optional
	api.Get("/tournaments", func(c *fiber.Ctx) error {
		list, err := tournaments.List(c.UserContext(), c.Query("status"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	api.Get("/tournaments/:id", guards.OptionalSession, func(c *fiber.Ctx) error {
		detail, err := tournaments.Detail(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(detail)
	})

	api.Get("/tournaments/:id/leaderboard", func(c *fiber.Ctx) error {
		results, err := tournaments.Leaderboard(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"results": results})
	})

	api.Get("/tournaments/:id/eligibility", guards.OptionalSession, func(c *fiber.Ctx) error {
		verdict, err := tournaments.Eligibility(c.UserContext(), middleware.UserID(c), c.Params("id"), c.Query("game_account_id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"eligible": verdict.Eligible(), "reason": verdict.Reason, "shortfall": verdict.Shortfall})
	})

	// 🔐 Signed in
	api.Post("/tournaments/:id/join", guards.RequireSession, guards.RateLimit, func(c *fiber.Ctx) error {
		var in joinRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&in); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
			}
		}
		res, err := join.Join(c.UserContext(), services.JoinRequest{
			UserID:         middleware.UserID(c),
			TournamentID:   c.Params("id"),
			GameAccountID:  in.GameAccountID,
			IdempotencyKey: c.Get("Idempotency-Key"),
		})
		if err != nil {
			return respondError(c, log, err)
		}
		status := fiber.StatusCreated
		if res.Replayed {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(res)
	})

	api.Get("/me/matches", guards.RequireSession, func(c *fiber.Ctx) error {
		matches, err := tournaments.MyMatches(c.UserContext(), middleware.UserID(c), c.Query("tab", services.TabAll))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"matches": matches})
	})
}
