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

// ProjectsHandler manages project endpoints.
type ProjectsHandler struct {
	service *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{service: projectService}
}

// List GET /api/projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := parseInt(c.Query("page_size"), 0)
	offset := 0
	if limit > 0 {
		offset = (parseInt(c.Query("page"), 1) - 1) * limit
	}
	projects, err := h.service.List(c.Context(), principal, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/projects/:id.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	project, err := h.service.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// Create POST /api/projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.Create(c.Context(), principal, service.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// Update PATCH /api/projects/:id.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.Update(c.Context(), principal, c.Params("id"), service.ProjectUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		ClientID:    project.ClientID,
		Status:      project.Status,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
