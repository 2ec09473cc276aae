package handlers

import (
	"esports-arena/logger"
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

type usernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=24,alphanumunicode"`
}

func SetupProfileRoutes(api fiber.Router, profile *services.ProfileService, guards Guards, log *logger.Logger) {
	me := api.Group("/me", guards.RequireSession)

	me.Get("/", func(c *fiber.Ctx) error {
		p, err := profile.Me(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(p)
	})

	me.Patch("/", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[usernameRequest](c)
		if in == nil {
			return err
		}
		u, err := profile.SetUsername(c.UserContext(), middleware.UserID(c), in.Username)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(u)
	})

	me.Post("/avatar", guards.RateLimit, func(c *fiber.Ctx) error {
		fh, err := c.FormFile("avatar")
		if err != nil || fh.Size == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar image is required"})
		}
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read avatar image"})
		}
		defer f.Close()

		u, err := profile.UploadAvatar(c.UserContext(), middleware.UserID(c), services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        f,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(u)
	})

	me.Get("/game-accounts", func(c *fiber.Ctx) error {
		list, err := profile.GameAccounts(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"game_accounts": list})
	})

	me.Post("/game-accounts", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[services.CreateGameAccountInput](c)
		if in == nil {
			return err
		}
		acc, err := profile.AddGameAccount(c.UserContext(), middleware.UserID(c), *in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(acc)
	})

	me.Delete("/game-accounts/:id", func(c *fiber.Ctx) error {
		if err := profile.RemoveGameAccount(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
