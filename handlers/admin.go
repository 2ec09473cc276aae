package handlers

import (
	"esports-arena/logger"
	"esports-arena/models"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=upcoming live completed"`
}

type resultsRequest struct {
	Results []services.ResultInput `json:"results" validate:"required,min=1,dive"`
}

type reviewRequest struct {
	Note *string `json:"note" validate:"omitempty,max=500"`
}

type bannerRequest struct {
	Title     string `json:"title" validate:"max=120"`
	ImageURL  string `json:"image_url" validate:"required,url"`
	LinkURL   string `json:"link_url" validate:"omitempty,url"`
	SortOrder int    `json:"sort_order"`
}

// SetupAdminRoutes mounts the back-office endpoints behind the admin service token.
func SetupAdminRoutes(api fiber.Router, svc Services, guards Guards, log *logger.Logger) {
	admin := api.Group("/admin", guards.Admin)

	admin.Post("/games", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[services.CreateGameInput](c)
		if in == nil {
			return err
		}
		g, err := svc.Games.CreateGame(c.UserContext(), *in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	})

	admin.Post("/banners", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[bannerRequest](c)
		if in == nil {
			return err
		}
		b := &models.Banner{Title: in.Title, ImageURL: in.ImageURL, LinkURL: in.LinkURL, SortOrder: in.SortOrder}
		if err := svc.Games.CreateBanner(c.UserContext(), b); err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	})

	admin.Post("/tournaments", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[services.CreateTournamentInput](c)
		if in == nil {
			return err
		}
		t, err := svc.Tournaments.Create(c.UserContext(), *in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	})

	admin.Patch("/tournaments/:id/status", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[statusRequest](c)
		if in == nil {
			return err
		}
		t, err := svc.Tournaments.AdvanceStatus(c.UserContext(), c.Params("id"), in.Status)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(t)
	})

	admin.Post("/tournaments/:id/results", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[resultsRequest](c)
		if in == nil {
			return err
		}
		saved, err := svc.Tournaments.RecordResults(c.UserContext(), c.Params("id"), in.Results)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"results": saved})
	})

	admin.Get("/payments/pending", func(c *fiber.Ctx) error {
		list, err := svc.Wallet.ListPending(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"requests": list})
	})

	admin.Post("/payments/:id/approve", func(c *fiber.Ctx) error {
		var in reviewRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&in); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
			}
		}
		req, err := svc.Wallet.Approve(c.UserContext(), c.Params("id"), in.Note)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(req)
	})

	admin.Post("/payments/:id/reject", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[reviewRequest](c)
		if in == nil {
			return err
		}
		req, err := svc.Wallet.Reject(c.UserContext(), c.Params("id"), in.Note)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(req)
	})

	admin.Put("/settings", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[services.SettingsUpdate](c)
		if in == nil {
			return err
		}
		view, err := svc.Settings.Update(c.UserContext(), *in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(view)
	})
}
