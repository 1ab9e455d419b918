package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrPostNotFound, fiber.StatusNotFound},
	{services.ErrUserNotFound, fiber.StatusNotFound},
	{services.ErrSessionNotFound, fiber.StatusNotFound},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrInvalidToken, fiber.StatusUnauthorized},
	{services.ErrAccountBlocked, fiber.StatusForbidden},
	{services.ErrInvalidAccessKey, fiber.StatusForbidden},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrNotConnected, fiber.StatusForbidden},
	{services.ErrEmailTaken, fiber.StatusConflict},
	{services.ErrInvalidTransition, fiber.StatusConflict},
	{services.ErrNotIdeaSubmission, fiber.StatusConflict},
	{services.ErrNotDeveloper, fiber.StatusBadRequest},
	{services.ErrContentRejected, fiber.StatusBadRequest},
	{services.ErrInvalidInput, fiber.StatusBadRequest},
	{services.ErrUpstream, fiber.StatusBadGateway},
}

// respondError maps a service error onto a status code. Details of 5xx
// errors are logged, not returned.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			status = e.status
			break
		}
	}

	message := err.Error()
	if status >= 500 {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
		message = "Upstream service unavailable"
		if status == fiber.StatusInternalServerError {
			message = "Internal server error"
		}
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
