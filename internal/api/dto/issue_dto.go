package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateIssueRequest payload. Status is server-assigned.
type CreateIssueRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Priority    domain.IssuePriority `json:"priority"`
	ProjectID   string               `json:"project_id"`
	AssigneeID  *string              `json:"assignee_id"`
}

// UpdateIssueRequest carries partial fields; absent fields are unchanged.
type UpdateIssueRequest struct {
	Title         *string               `json:"title"`
	Description   *string               `json:"description"`
	Status        *domain.IssueStatus   `json:"status"`
	Priority      *domain.IssuePriority `json:"priority"`
	AssigneeID    *string               `json:"assignee_id"`
	ClearAssignee bool                  `json:"clear_assignee"`
}

// IssueResponse is the public view of an issue.
type IssueResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Status      domain.IssueStatus   `json:"status"`
	Priority    domain.IssuePriority `json:"priority"`
	ProjectID   string               `json:"project_id"`
	ReporterID  string               `json:"reporter_id"`
	AssigneeID  *string              `json:"assignee_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateAttachmentRequest records an already uploaded file.
type CreateAttachmentRequest struct {
	Filename string  `json:"filename"`
	FileURL  string  `json:"file_url"`
	FileSize *int64  `json:"file_size"`
	MimeType *string `json:"mime_type"`
}

// AttachmentResponse is the public view of an attachment.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	IssueID    string    `json:"issue_id"`
	Filename   string    `json:"filename"`
	FileURL    string    `json:"file_url"`
	FileSize   *int64    `json:"file_size,omitempty"`
	MimeType   *string   `json:"mime_type,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// UploadResponse returns the public URL of a stored blob.
type UploadResponse struct {
	PublicURL string `json:"public_url"`
}
