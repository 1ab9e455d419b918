package handlers

import (
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil || req.ReceiverID == "" {
		return badRequest(c, "receiver_id and text are required")
	}

	msg, err := h.messageService.Send(c.UserContext(), user, req.ReceiverID, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *MessageHandler) Conversation(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	msgs, marked, err := h.messageService.Conversation(c.UserContext(), user.ID, c.Params("otherId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ConversationResponse{Messages: msgs, MarkedRead: marked})
}

func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	ids, err := h.messageService.Conversations(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ConversationListResponse{UserIDs: ids})
}
