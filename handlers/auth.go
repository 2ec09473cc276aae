package handlers

import (
	"esports-arena/logger"
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func SetupAuthRoutes(api fiber.Router, auth *services.AuthService, guards Guards, log *logger.Logger) {
	g := api.Group("/auth")

	g.Post("/signup", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[credentialsRequest](c)
		if in == nil {
			return err
		}
		signed, err := auth.SignUp(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(signed)
	})

	g.Post("/signin", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[credentialsRequest](c)
		if in == nil {
			return err
		}
		signed, err := auth.SignIn(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(signed)
	})

	g.Get("/session", guards.RequireSession, func(c *fiber.Ctx) error {
		return c.JSON(middleware.SessionFrom(c))
	})

	g.Post("/refresh", guards.RequireSession, func(c *fiber.Ctx) error {
		signed, err := auth.Refresh(c.UserContext(), middleware.SessionFrom(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(signed)
	})

	g.Post("/signout", guards.RequireSession, func(c *fiber.Ctx) error {
		if err := auth.SignOut(c.UserContext(), middleware.SessionFrom(c).ID); err != nil {
			return respondError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
