package domain

import "time"

// ProjectStatus enumerates lifecycle states for projects.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// ValidProjectStatus reports whether the value is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project groups issues under a single client engagement.
// ClientID references the owning client's user id; UserID is the
// owner used for role-based visibility filtering.
type Project struct {
	ID          string
	Name        string
	Description string
	ClientID    string
	Status      ProjectStatus
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
