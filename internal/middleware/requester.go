package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// LoadRequester re-reads the caller's profile on every request so role
// changes and blocks take effect without waiting for the token to expire.
// Requests without a token pass through as anonymous.
func LoadRequester(users *services.UserService, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := session.GetUserID(c)
		if err != nil {
			return c.Next()
		}

		if uid == services.EmergencyUserID && session.IsEmergency(c) {
			session.SetRequester(c, services.EmergencyProfile(cfg.SuperAdminEmail))
			return c.Next()
		}

		user, err := users.Get(c.UserContext(), uid)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: "Account no longer exists",
				})
			}
			return err
		}
		if user.Blocked {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: services.ErrAccountBlocked.Error(),
			})
		}

		session.SetRequester(c, user)
		return c.Next()
	}
}

// RequireRole lets only the given roles through. It must run after
// LoadRequester.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := session.GetRequester(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Insufficient role",
		})
	}
}

// ReviewerRequired admits leads and super admins.
func ReviewerRequired() fiber.Handler {
	return RequireRole(models.RoleLead, models.RoleSuperAdmin)
}
