package handlers

import (
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AssistantHandler struct {
	assistantService *services.AssistantService
}

func NewAssistantHandler(assistantService *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

func (h *AssistantHandler) CreateSession(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	s, err := h.assistantService.CreateSession(user.ID, req.Feature)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{SessionID: s.ID, Feature: s.Feature})
}

func (h *AssistantHandler) SendMessage(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.AssistantMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	reply, provider, err := h.assistantService.SendMessage(c.UserContext(), user.ID, c.Params("id"), req.Message, req.Context)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AssistantMessageResponse{Reply: reply, Provider: provider})
}
