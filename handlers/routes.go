package handlers

import (
	"esports-arena/logger"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Guards are the middleware chains routes pick from.
type Guards struct {
	RequireSession  fiber.Handler
	OptionalSession fiber.Handler
	RateLimit       fiber.Handler
	Admin           fiber.Handler
}

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth        *services.AuthService
	Join        *services.JoinService
	Tournaments *services.TournamentService
	Games       *services.GameService
	Wallet      *services.WalletService
	Settings    *services.SettingsService
	Spin        *services.SpinService
	Profile     *services.ProfileService
	Home        *services.HomeService
}

// SetupRoutes mounts health, metrics and the /api/v1 surface.
func SetupRoutes(app *fiber.App, svc Services, guards Guards, registry *prometheus.Registry, log *logger.Logger) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")
	SetupAuthRoutes(api, svc.Auth, guards, log)
	SetupHomeRoutes(api, svc.Home, log)
	SetupGameRoutes(api, svc.Games, log)
	SetupTournamentRoutes(api, svc.Tournaments, svc.Join, guards, log)
	SetupWalletRoutes(api, svc.Wallet, svc.Settings, guards, log)
	SetupSpinRoutes(api, svc.Spin, guards, log)
	SetupProfileRoutes(api, svc.Profile, guards, log)
	SetupAdminRoutes(api, svc, guards, log)
}
