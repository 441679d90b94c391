package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
//
// The state machine is non-strict: any status may follow any other,
// including reopening a closed issue. New issues always start open.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// ValidIssueStatus reports whether the value is a known issue status.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

// IssuePriority classifies urgency, orthogonal to status.
type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "low"
	IssuePriorityMedium   IssuePriority = "medium"
	IssuePriorityHigh     IssuePriority = "high"
	IssuePriorityCritical IssuePriority = "critical"
)

// ValidIssuePriority reports whether the value is a known priority.
func ValidIssuePriority(p IssuePriority) bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityCritical:
		return true
	}
	return false
}

// Issue is the central aggregate. ReporterID is the user who filed it;
// UserID is the owner used for client visibility filtering and is set
// to the reporter at creation.
type Issue struct {
	ID          string
	Title       string
	Description string
	Status      IssueStatus
	Priority    IssuePriority
	ProjectID   string
	ReporterID  string
	AssigneeID  *string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
