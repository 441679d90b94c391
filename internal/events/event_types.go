package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated         EventType = "issue_created"
	EventIssueStatusChanged   EventType = "issue_status_changed"
	EventIssuePriorityChanged EventType = "issue_priority_changed"
	EventIssueAssigned        EventType = "issue_assigned"
	EventIssueDeleted         EventType = "issue_deleted"
	EventCommentAdded         EventType = "comment_added"
	EventAttachmentAdded      EventType = "attachment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	ProjectID string               `json:"project_id"`
	Priority  domain.IssuePriority `json:"priority"`
	Title     string               `json:"title"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// IssuePriorityChangedPayload payload.
type IssuePriorityChangedPayload struct {
	OldPriority domain.IssuePriority `json:"old_priority"`
	NewPriority domain.IssuePriority `json:"new_priority"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	AuthorID       string `json:"author_id"`
	ContentPreview string `json:"content_preview"`
}

// AttachmentAddedPayload payload.
type AttachmentAddedPayload struct {
	AttachmentID string `json:"attachment_id"`
	Filename     string `json:"filename"`
	FileURL      string `json:"file_url"`
}
