package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// AuthHandler manages session endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, exp, err := h.service.Register(c.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	}})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, exp, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	}})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Logout(c.Context(), claims); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": userResponse(principal)})
}

// UpdateProfile PATCH /auth/me.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.UpdateProfile(c.Context(), principal, req.DisplayName, req.AvatarURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
