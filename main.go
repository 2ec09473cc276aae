package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"esports-arena/config"
	"esports-arena/handlers"
	"esports-arena/logger"
	"esports-arena/metrics"
	"esports-arena/middleware"
	"esports-arena/services"
	"esports-arena/store"
	"esports-arena/utils"
	"esports-arena/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"golang.org/x/time/rate"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("❌ invalid configuration", "error", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, ServiceName: "esports-arena"})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg.Database)
	if err != nil {
		log.Fatal("❌ failed to open store", "driver", cfg.Database.Driver, "error", err)
	}

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal("❌ failed to initialize blob storage", "error", err)
	}

	settings := services.NewSettingsService(st, log)
	authSvc := services.NewAuthService(st, services.AuthConfig{
		Secret:     []byte(cfg.Auth.JWTSecret),
		SessionTTL: cfg.Auth.SessionTTL,
	}, log)
	svc := handlers.Services{
		Auth:        authSvc,
		Join:        services.NewJoinService(st, log),
		Tournaments: services.NewTournamentService(st, log),
		Games:       services.NewGameService(st, log),
		Wallet:      services.NewWalletService(st, settings, blobs, log),
		Settings:    settings,
		Spin:        services.NewSpinService(st, log),
		Profile:     services.NewProfileService(st, blobs, log),
		Home:        services.NewHomeService(st),
	}

	secret := []byte(cfg.Auth.JWTSecret)
	guards := handlers.Guards{
		RequireSession:  middleware.RequireSession(secret, authSvc, log),
		OptionalSession: middleware.OptionalSession(secret, authSvc, log),
		RateLimit:       middleware.RateLimit(middleware.NewKeyedRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)),
		Admin:           middleware.AdminTokenMiddleware(cfg.Server.AdminToken, log),
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // payment screenshots and avatars
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.RequestMetrics(log))
	if !cfg.R2.Enabled() {
		app.Static("/uploads", cfg.R2.LocalUploadDir)
	}

	handlers.SetupRoutes(app, svc, guards, metrics.NewRegistry(), log)

	rec := workers.NewReconciler(st, cfg.Jobs.JoinAttemptTTL, log)
	sched, err := workers.StartScheduler(ctx, rec, cfg.Jobs.ReconcileInterval, log)
	if err != nil {
		log.Fatal("❌ failed to start scheduler", "error", err)
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info("✅ server listening", "addr", addr, "store", cfg.Database.Driver, "r2", cfg.R2.Enabled())
		if err := app.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")
	if err := sched.Shutdown(); err != nil {
		log.Warn("scheduler shutdown failed", "error", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warn("server shutdown failed", "error", err)
	}
}

func openStore(cfg config.DatabaseConfig) (store.Store, error) {
	if cfg.Driver == "memory" {
		return store.NewMemory(), nil
	}
	return store.OpenPostgres(cfg.URL, gormlogger.Warn)
}

// openBlobStore uses R2 when credentials are configured and the local upload dir otherwise.
func openBlobStore(ctx context.Context, cfg *config.Config) (services.BlobStore, error) {
	if cfg.R2.Enabled() {
		return utils.NewR2Uploader(ctx, cfg.R2)
	}
	return utils.NewLocalUploader(cfg.R2.LocalUploadDir, "/uploads")
}
