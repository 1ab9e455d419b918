package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/features"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.StoreBackend == database.BackendPostgres && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required for the postgres backend")
		os.Exit(1)
	}
	if cfg.MasterPassword == "" {
		slog.Warn("MASTER_PASSWORD not set, super admin login disabled")
	}
	if cfg.SuperAdminEmergencyFallback {
		slog.Warn("super admin emergency fallback enabled")
	}

	// Feature registry for the assistant
	registry, err := features.LoadFromFile(cfg.FeaturesConfigPath)
	if err != nil {
		slog.Error("failed to load feature registry", "path", cfg.FeaturesConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("feature registry loaded", "features", len(registry.All()))

	// Persistence
	provider, db, err := database.OpenProvider(cfg)
	if err != nil {
		slog.Error("store initialization failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch) and 30-day retention
	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})
	if db != nil {
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewJSONHandler(os.Stdout, logging.Level(cfg.AppEnv)),
			pgLogHandler,
		)))
		logging.StartCleanup(db, 30*24*time.Hour, cleanupDone)
	}

	// Services
	contentFilter := services.NewContentFilter()
	authService := services.NewAuthService(provider, cfg)
	userService := services.NewUserService(provider)
	postService := services.NewPostService(provider, contentFilter)
	messageService := services.NewMessageService(provider, userService)
	storageService := services.NewStorageService(cfg)
	assistantService := services.NewAssistantService(cfg, registry)

	unsubscribe := authService.OnAuthChange(func(e services.AuthEvent) {
		if e.User == nil {
			slog.Info("auth state changed", "action", "auth_signout", "user_id", e.UserID)
			return
		}
		slog.Info("auth state changed", "action", "auth_signin", "user_id", e.UserID, "role", e.User.Role)
	})
	defer unsubscribe()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(provider, cfg.StoreBackend)
	postHandler := handlers.NewPostHandler(postService)
	userHandler := handlers.NewUserHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService)
	uploadHandler := handlers.NewUploadHandler(storageService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadSize + 64*1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, userService, authHandler, healthHandler, postHandler, userHandler, messageHandler, uploadHandler, assistantHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "backend", cfg.StoreBackend)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := provider.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
