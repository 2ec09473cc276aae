package handlers

import (
	"strings"

	"esports-arena/logger"
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

type withdrawRequest struct {
	Amount int64  `json:"amount" form:"amount" validate:"required,gt=0"`
	UPIID  string `json:"upi_id" form:"upi_id" validate:"required,max=100"`
}

type depositRequest struct {
	Amount int64 `json:"amount" form:"amount" validate:"required,gt=0"`
}

func SetupWalletRoutes(api fiber.Router, wallet *services.WalletService, settings *services.SettingsService, guards Guards, log *logger.Logger) {
	api.Get("/settings/payment", func(c *fiber.Ctx) error {
		view, err := settings.View(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(view)
	})

	w := api.Group("/wallet", guards.RequireSession)

	w.Get("/", func(c *fiber.Ctx) error {
		overview, err := wallet.Overview(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(overview)
	})

	w.Post("/withdraw", guards.RateLimit, func(c *fiber.Ctx) error {
		in, err := BindAndValidate[withdrawRequest](c)
		if in == nil {
			return err
		}
		req, balance, err := wallet.Withdraw(c.UserContext(), services.WithdrawRequest{
			UserID: middleware.UserID(c),
			Amount: in.Amount,
			UPIID:  in.UPIID,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": req, "balance": balance})
	})

	// Accepts JSON or multipart; a multipart body may carry the payment screenshot as "proof".
	w.Post("/deposit", guards.RateLimit, func(c *fiber.Ctx) error {
		in, err := BindAndValidate[depositRequest](c)
		if in == nil {
			return err
		}
		req := services.DepositRequest{UserID: middleware.UserID(c), Amount: in.Amount}

		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			if fh, err := c.FormFile("proof"); err == nil && fh.Size > 0 {
				f, err := fh.Open()
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read proof image"})
				}
				defer f.Close()
				req.Proof = &services.Upload{
					Filename:    fh.Filename,
					ContentType: fh.Header.Get(fiber.HeaderContentType),
					Body:        f,
				}
			}
		}

		created, err := wallet.Deposit(c.UserContext(), req)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
}
