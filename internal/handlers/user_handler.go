package handlers

import (
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}
	return c.JSON(user)
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.userService.UpdateProfile(c.UserContext(), user.ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *UserHandler) Connected(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	users, err := h.userService.Connected(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UserListResponse{Users: users, Total: len(users)})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.userService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ---- reviewer endpoints ----

func (h *UserHandler) Developers(c *fiber.Ctx) error {
	users, err := h.userService.Developers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UserListResponse{Users: users, Total: len(users)})
}

func (h *UserHandler) All(c *fiber.Ctx) error {
	users, err := h.userService.All(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UserListResponse{Users: users, Total: len(users)})
}

// ToggleBlock returns the profile as computed by the toggle, not a fresh read.
func (h *UserHandler) ToggleBlock(c *fiber.Ctx) error {
	admin := session.GetRequester(c)
	if admin == nil {
		return unauthorized(c)
	}

	user, err := h.userService.ToggleBlock(c.UserContext(), admin, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
