package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	userService *services.UserService,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	postHandler *handlers.PostHandler,
	userHandler *handlers.UserHandler,
	messageHandler *handlers.MessageHandler,
	uploadHandler *handlers.UploadHandler,
	assistantHandler *handlers.AssistantHandler,
) {
	// Uploaded schema images
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth: public, stricter rate limit of 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup/founder", authHandler.SignUpFounder)
	auth.Post("/signup/developer", authHandler.SignUpDeveloper)
	auth.Post("/login", authHandler.Login)
	auth.Post("/lead", authHandler.LoginLead)
	auth.Post("/super-admin", authHandler.LoginSuperAdmin)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	jwt := middleware.JWTProtected(cfg)
	requester := middleware.LoadRequester(userService, cfg)

	// Feeds are readable anonymously; a token narrows or widens visibility.
	api.Get("/posts", middleware.OptionalJWT(cfg), requester, postHandler.List)
	api.Get("/posts/:id", middleware.OptionalJWT(cfg), requester, postHandler.Get)

	// Protected routes (JWT required) - middleware is applied per route so
	// it never reaches the public auth endpoints.
	api.Post("/posts", jwt, requester, postHandler.Create)
	api.Post("/posts/:id/like", jwt, requester, postHandler.Like)
	api.Post("/posts/:id/comments", jwt, requester, postHandler.Comment)
	api.Post("/posts/:id/apply", jwt, requester, middleware.RequireRole(models.RoleDeveloper), postHandler.Apply)
	api.Put("/posts/:id/delivery", jwt, requester, postHandler.UpdateDelivery)
	api.Delete("/posts/:id", jwt, requester, postHandler.Delete)

	api.Get("/users/me", jwt, requester, userHandler.Me)
	api.Put("/users/me", jwt, requester, userHandler.UpdateMe)
	api.Get("/users/connected", jwt, requester, userHandler.Connected)
	api.Get("/users/:id", jwt, requester, userHandler.Get)
	api.Get("/users/:id/posts", jwt, requester, postHandler.UserPosts)

	api.Get("/messages/conversations", jwt, requester, messageHandler.Conversations)
	api.Get("/messages/:otherId", jwt, requester, messageHandler.Conversation)
	api.Post("/messages", jwt, requester, messageHandler.Send)

	api.Post("/uploads/schema", jwt, requester, uploadHandler.Schema)

	api.Post("/assistant/sessions", jwt, requester, assistantHandler.CreateSession)
	api.Post("/assistant/sessions/:id/messages", jwt, requester, assistantHandler.SendMessage)

	// Reviewer panel (leads and super admins)
	admin := api.Group("/admin", jwt, requester, middleware.ReviewerRequired())
	admin.Get("/posts/pending", postHandler.Pending)
	admin.Post("/posts/:id/verify", postHandler.Verify)
	admin.Post("/posts/:id/reject", postHandler.Reject)
	admin.Post("/posts/:id/assign", postHandler.Assign)
	admin.Post("/posts/:id/assign-team", postHandler.AssignTeam)
	admin.Delete("/posts/:id/team/:userId", postHandler.Unassign)
	admin.Get("/users", userHandler.All)
	admin.Get("/developers", userHandler.Developers)
	admin.Post("/users/:id/toggle-block", userHandler.ToggleBlock)
}
