package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	provider store.Provider
	backend  string
}

func NewHealthHandler(provider store.Provider, backend string) *HealthHandler {
	return &HealthHandler{provider: provider, backend: backend}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storeStatus := "ok"
	if err := h.provider.Ping(c.UserContext()); err != nil {
		storeStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
		Backend:   h.backend,
	})
}
