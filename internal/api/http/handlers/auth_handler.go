package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// AuthHandler exposes signup and login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Signup POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	payload, err := decodeBody(c)
	if err != nil {
		return err
	}
	token, err := h.service.Signup(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{Token: token.Token})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	payload, err := decodeBody(c)
	if err != nil {
		return err
	}
	token, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{Token: token.Token})
}
