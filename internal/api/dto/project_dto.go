package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	ClientID    string               `json:"client_id"`
	Status      domain.ProjectStatus `json:"status"`
}

// UpdateProjectRequest carries partial fields; absent fields are unchanged.
type UpdateProjectRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	ClientID    *string               `json:"client_id"`
	Status      *domain.ProjectStatus `json:"status"`
}

// ProjectResponse is the public view of a project.
type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	ClientID    string               `json:"client_id"`
	Status      domain.ProjectStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
