// Package session reads the authenticated caller out of a Fiber request.
package session

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const requesterKey = "requester"

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mc, nil
}

// GetUserID extracts the user id from the JWT sub claim.
func GetUserID(c *fiber.Ctx) (string, error) {
	mc, err := claims(c)
	if err != nil {
		return "", err
	}
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub claim")
	}
	return sub, nil
}

// IsEmergency reports whether the token was issued by the emergency
// super-admin path.
func IsEmergency(c *fiber.Ctx) bool {
	mc, err := claims(c)
	if err != nil {
		return false
	}
	emergency, _ := mc["emergency"].(bool)
	return emergency
}

func SetRequester(c *fiber.Ctx, user *models.User) {
	c.Locals(requesterKey, user)
}

// GetRequester returns the profile loaded for this request, or nil for
// anonymous callers.
func GetRequester(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(requesterKey).(*models.User); ok {
		return user
	}
	return nil
}
