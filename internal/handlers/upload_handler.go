package handlers

import (
	"io"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{storageService: storageService}
}

// Schema accepts a multipart "file" field and returns its public URL.
func (h *UploadHandler) Schema(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	f, err := header.Open()
	if err != nil {
		return badRequest(c, "could not read upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "could not read upload")
	}

	url, err := h.storageService.UploadSchemaImage(c.UserContext(), data, header.Filename)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{URL: url})
}
