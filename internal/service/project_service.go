package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/policy"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// ProjectService coordinates project workflows.
type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
}

// NewProjectService constructs the service.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository) *ProjectService {
	return &ProjectService{projects: projects, users: users}
}

// ProjectCreateInput describes project creation payload.
type ProjectCreateInput struct {
	Name        string
	Description string
	ClientID    string
	Status      domain.ProjectStatus
}

// ProjectUpdateInput carries partial fields; nil means unchanged.
type ProjectUpdateInput struct {
	Name        *string
	Description *string
	ClientID    *string
	Status      *domain.ProjectStatus
}

// List returns projects visible to the principal, newest first.
// Clients see only projects they own; team and admin see all.
func (s *ProjectService) List(ctx context.Context, principal *domain.User, limit, offset int) ([]domain.Project, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.ProjectFilter{Limit: limit, Offset: offset}
	if principal.Role == domain.RoleClient {
		clientID := principal.ID
		filter.ClientID = &clientID
	}
	projects, err := s.projects.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

// Get fetches a single project, enforcing visibility.
func (s *ProjectService) Get(ctx context.Context, principal *domain.User, projectID string) (*domain.Project, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanViewProject(principal, project) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return project, nil
}

// Create validates and persists a new project. The referenced client
// must be a user holding the client role.
func (s *ProjectService) Create(ctx context.Context, principal *domain.User, input ProjectCreateInput) (*domain.Project, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !policy.Can(principal.Role, policy.ActionCreateProject) {
		return nil, apperrors.NewForbidden("role may not create projects")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if input.ClientID == "" {
		return nil, apperrors.NewValidationError("client_id required", nil)
	}
	if input.Status == "" {
		input.Status = domain.ProjectStatusActive
	}
	if !domain.ValidProjectStatus(input.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": input.Status})
	}

	client, err := s.users.GetByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("client does not exist", map[string]any{"client_id": input.ClientID})
		}
		return nil, apperrors.MapError(err)
	}
	if client.Role != domain.RoleClient {
		return nil, apperrors.NewValidationError("client_id must reference a client user", map[string]any{"client_id": input.ClientID})
	}

	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ClientID:    input.ClientID,
		Status:      input.Status,
		UserID:      principal.ID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// Update merges partial fields onto the stored project.
func (s *ProjectService) Update(ctx context.Context, principal *domain.User, projectID string, input ProjectUpdateInput) (*domain.Project, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !policy.Can(principal.Role, policy.ActionUpdateProject) {
		return nil, apperrors.NewForbidden("role may not update projects")
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name required", nil)
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !domain.ValidProjectStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		project.Status = *input.Status
	}
	if input.ClientID != nil {
		client, err := s.users.GetByID(ctx, *input.ClientID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("client does not exist", map[string]any{"client_id": *input.ClientID})
			}
			return nil, apperrors.MapError(err)
		}
		if client.Role != domain.RoleClient {
			return nil, apperrors.NewValidationError("client_id must reference a client user", map[string]any{"client_id": *input.ClientID})
		}
		project.ClientID = *input.ClientID
	}

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}
