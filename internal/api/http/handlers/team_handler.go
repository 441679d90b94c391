package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// TeamHandler manages team directory endpoints.
type TeamHandler struct {
	service *service.DirectoryService
}

// NewTeamHandler constructs handler.
func NewTeamHandler(directoryService *service.DirectoryService) *TeamHandler {
	return &TeamHandler{service: directoryService}
}

// List GET /api/team.
func (h *TeamHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := parseInt(c.Query("page_size"), 0)
	offset := 0
	if limit > 0 {
		offset = (parseInt(c.Query("page"), 1) - 1) * limit
	}
	members, err := h.service.ListMembers(c.Context(), principal, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(members))
	for i := range members {
		items = append(items, userResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Invite POST /api/team.
func (h *TeamHandler) Invite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.InviteMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.service.Invite(c.Context(), principal, req.Email, req.DisplayName, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(member)})
}

// ChangeRole PATCH /api/team/:id/role.
func (h *TeamHandler) ChangeRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.service.ChangeRole(c.Context(), principal, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(member)})
}

// Remove DELETE /api/team/:id.
func (h *TeamHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Remove(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
