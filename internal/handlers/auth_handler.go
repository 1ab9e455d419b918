package handlers

import (
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SignUpFounder(c *fiber.Ctx) error {
	return h.signUp(c, models.RoleFounder)
}

func (h *AuthHandler) SignUpDeveloper(c *fiber.Ctx) error {
	return h.signUp(c, models.RoleDeveloper)
}

func (h *AuthHandler) signUp(c *fiber.Ctx, role models.Role) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.SignUp(c.UserContext(), role, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.SignIn(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) LoginLead(c *fiber.Ctx) error {
	var req dto.LeadLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.LoginLead(c.UserContext(), req.Email, req.AccessKey)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) LoginSuperAdmin(c *fiber.Ctx) error {
	var req dto.SuperAdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.LoginSuperAdmin(c.UserContext(), req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.SignOut(c.UserContext(), userID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
