package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/policy"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/storage"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// IssueService coordinates issue workflows. Every operation resolves
// access through the policy package before touching storage.
type IssueService struct {
	issues      repository.IssueRepository
	projects    repository.ProjectRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	blobs       storage.BlobStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo      repository.IssueRepository
	ProjectRepo    repository.ProjectRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Blobs          storage.BlobStore
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// IssueCreateInput describes issue creation payload. Status is not
// part of the input: new issues always start open.
type IssueCreateInput struct {
	Title       string
	Description string
	Priority    domain.IssuePriority
	ProjectID   string
	AssigneeID  *string
}

// IssueUpdateInput carries partial fields; nil means unchanged.
type IssueUpdateInput struct {
	Title         *string
	Description   *string
	Status        *domain.IssueStatus
	Priority      *domain.IssuePriority
	AssigneeID    *string
	ClearAssignee bool
}

// IssueListFilter describes listing filters on top of role scoping.
type IssueListFilter struct {
	ProjectID  *string
	Statuses   []domain.IssueStatus
	Priorities []domain.IssuePriority
	Limit      int
	Offset     int
}

// FileUpload is one file in a create-with-attachments flow.
type FileUpload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:      deps.IssueRepo,
		projects:    deps.ProjectRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		blobs:       deps.Blobs,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// List returns the issues visible to the principal, newest first.
// Clients see only issues they own; team and admin see all.
func (s *IssueService) List(ctx context.Context, principal *domain.User, filter IssueListFilter) ([]domain.Issue, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	repoFilter := repository.IssueFilter{
		ProjectID:  filter.ProjectID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if principal.Role == domain.RoleClient {
		ownerID := principal.ID
		repoFilter.OwnerID = &ownerID
	}
	issues, err := s.issues.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	return issues, nil
}

// Get fetches a single issue, enforcing visibility.
func (s *IssueService) Get(ctx context.Context, principal *domain.User, issueID string) (*domain.Issue, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanViewIssue(principal, issue) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return issue, nil
}

// Create validates and persists a new issue. The reporter and owner
// are stamped from the principal and the status is forced to open.
func (s *IssueService) Create(ctx context.Context, principal *domain.User, input IssueCreateInput) (*domain.Issue, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !policy.Can(principal.Role, policy.ActionCreateIssue) {
		return nil, apperrors.NewForbidden("role may not create issues")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if input.ProjectID == "" {
		return nil, apperrors.NewValidationError("project_id required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.IssuePriorityMedium
	}
	if !domain.ValidIssuePriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("project does not exist", map[string]any{"project_id": input.ProjectID})
		}
		return nil, apperrors.MapError(err)
	}

	issue := &domain.Issue{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.IssueStatusOpen,
		Priority:    input.Priority,
		ProjectID:   input.ProjectID,
		ReporterID:  principal.ID,
		AssigneeID:  input.AssigneeID,
		UserID:      principal.ID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, principal, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Payload: events.IssueCreatedPayload{
			ProjectID: issue.ProjectID,
			Priority:  issue.Priority,
			Title:     issue.Title,
		},
	})
	return issue, nil
}

// CreateWithAttachments uploads each file, creates the issue, then
// records an attachment per successful upload. A failed upload is
// logged and skipped; it never aborts issue creation or the other
// attachments.
func (s *IssueService) CreateWithAttachments(ctx context.Context, principal *domain.User, input IssueCreateInput, files []FileUpload) (*domain.Issue, []domain.Attachment, error) {
	type uploaded struct {
		filename string
		fileURL  string
		size     int64
		mimeType string
	}

	var stored []uploaded
	for _, file := range files {
		blobPath := attachmentPath(file.Filename)
		fileURL, err := s.blobs.Upload(ctx, file.Content, blobPath, true)
		if err != nil {
			s.logger.Warn("attachment upload failed",
				zap.String("filename", file.Filename),
				zap.Error(err))
			continue
		}
		stored = append(stored, uploaded{
			filename: file.Filename,
			fileURL:  fileURL,
			size:     file.Size,
			mimeType: file.MimeType,
		})
	}

	issue, err := s.Create(ctx, principal, input)
	if err != nil {
		return nil, nil, err
	}

	attachments := make([]domain.Attachment, 0, len(stored))
	for _, up := range stored {
		record, err := s.AddAttachment(ctx, principal, issue.ID, AttachmentInput{
			Filename: up.filename,
			FileURL:  up.fileURL,
			FileSize: &up.size,
			MimeType: &up.mimeType,
		})
		if err != nil {
			s.logger.Warn("attachment record creation failed",
				zap.String("issue_id", issue.ID),
				zap.String("filename", up.filename),
				zap.Error(err))
			continue
		}
		attachments = append(attachments, *record)
	}
	return issue, attachments, nil
}

// Update merges partial fields onto the stored issue. Status changes
// are rejected for clients here regardless of what the transport
// layer already filtered.
func (s *IssueService) Update(ctx context.Context, principal *domain.User, issueID string, input IssueUpdateInput) (*domain.Issue, error) {
	issue, err := s.Get(ctx, principal, issueID)
	if err != nil {
		return nil, err
	}

	oldStatus := issue.Status
	oldPriority := issue.Priority
	oldAssignee := issue.AssigneeID

	if input.Status != nil {
		if !policy.Can(principal.Role, policy.ActionChangeIssueStatus) {
			return nil, apperrors.NewForbidden("role may not change issue status")
		}
		if !domain.ValidIssueStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		issue.Status = *input.Status
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title required", nil)
		}
		issue.Title = title
	}
	if input.Description != nil {
		issue.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !domain.ValidIssuePriority(*input.Priority) {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		issue.Priority = *input.Priority
	}
	if input.ClearAssignee {
		issue.AssigneeID = nil
	} else if input.AssigneeID != nil {
		issue.AssigneeID = input.AssigneeID
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.MapError(err)
	}

	if issue.Status != oldStatus {
		s.publishEvent(ctx, principal, events.Event{
			Type:    events.EventIssueStatusChanged,
			IssueID: issue.ID,
			Payload: events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: issue.Status},
		})
	}
	if issue.Priority != oldPriority {
		s.publishEvent(ctx, principal, events.Event{
			Type:    events.EventIssuePriorityChanged,
			IssueID: issue.ID,
			Payload: events.IssuePriorityChangedPayload{OldPriority: oldPriority, NewPriority: issue.Priority},
		})
	}
	if !sameAssignee(oldAssignee, issue.AssigneeID) {
		s.publishEvent(ctx, principal, events.Event{
			Type:    events.EventIssueAssigned,
			IssueID: issue.ID,
			Payload: events.IssueAssignedPayload{AssigneeID: issue.AssigneeID},
		})
	}
	return issue, nil
}

// Delete removes an issue. Admin only; deleting an absent id is not
// an error.
func (s *IssueService) Delete(ctx context.Context, principal *domain.User, issueID string) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !policy.Can(principal.Role, policy.ActionDeleteIssue) {
		return apperrors.NewForbidden("role may not delete issues")
	}
	if err := s.issues.Delete(ctx, issueID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, principal, events.Event{
		Type:    events.EventIssueDeleted,
		IssueID: issueID,
	})
	return nil
}

// Stats recomputes dashboard statistics from the principal's visible
// issue and project sets on every call.
func (s *IssueService) Stats(ctx context.Context, principal *domain.User) (domain.DashboardStats, error) {
	issues, err := s.List(ctx, principal, IssueListFilter{})
	if err != nil {
		return domain.DashboardStats{}, err
	}

	projectFilter := repository.ProjectFilter{}
	if principal.Role == domain.RoleClient {
		clientID := principal.ID
		projectFilter.ClientID = &clientID
	}
	projects, err := s.projects.ListWithFilter(ctx, projectFilter)
	if err != nil {
		return domain.DashboardStats{}, apperrors.MapError(err)
	}
	return domain.ComputeStats(issues, projects), nil
}

// AddComment appends a comment to a visible issue.
func (s *IssueService) AddComment(ctx context.Context, principal *domain.User, issueID, content string) (*domain.Comment, error) {
	if _, err := s.Get(ctx, principal, issueID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	comment := &domain.Comment{
		ID:      uuid.NewString(),
		IssueID: issueID,
		UserID:  principal.ID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, principal, events.Event{
		Type:    events.EventCommentAdded,
		IssueID: issueID,
		Payload: events.CommentAddedPayload{
			CommentID:      comment.ID,
			AuthorID:       comment.UserID,
			ContentPreview: stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

// ListComments returns an issue's comments oldest first.
func (s *IssueService) ListComments(ctx context.Context, principal *domain.User, issueID string) ([]domain.Comment, error) {
	if _, err := s.Get(ctx, principal, issueID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// AttachmentInput describes an attachment record whose file is
// already uploaded.
type AttachmentInput struct {
	Filename string
	FileURL  string
	FileSize *int64
	MimeType *string
}

// AddAttachment records an uploaded file against a visible issue.
func (s *IssueService) AddAttachment(ctx context.Context, principal *domain.User, issueID string, input AttachmentInput) (*domain.Attachment, error) {
	if _, err := s.Get(ctx, principal, issueID); err != nil {
		return nil, err
	}
	if input.Filename == "" || input.FileURL == "" {
		return nil, apperrors.NewValidationError("filename and file_url required", nil)
	}

	attachment := &domain.Attachment{
		ID:         uuid.NewString(),
		IssueID:    issueID,
		Filename:   input.Filename,
		FileURL:    input.FileURL,
		FileSize:   input.FileSize,
		MimeType:   input.MimeType,
		UploadedBy: principal.ID,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, principal, events.Event{
		Type:    events.EventAttachmentAdded,
		IssueID: issueID,
		Payload: events.AttachmentAddedPayload{
			AttachmentID: attachment.ID,
			Filename:     attachment.Filename,
			FileURL:      attachment.FileURL,
		},
	})
	return attachment, nil
}

// ListAttachments returns an issue's attachments newest first.
func (s *IssueService) ListAttachments(ctx context.Context, principal *domain.User, issueID string) ([]domain.Attachment, error) {
	if _, err := s.Get(ctx, principal, issueID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return attachments, nil
}

// DeleteAttachment removes an attachment record. Idempotent.
func (s *IssueService) DeleteAttachment(ctx context.Context, principal *domain.User, issueID, attachmentID string) error {
	if _, err := s.Get(ctx, principal, issueID); err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// UploadFile stores raw content in the blob store and returns its
// public URL. Associating the URL with an attachment record is a
// separate step.
func (s *IssueService) UploadFile(ctx context.Context, principal *domain.User, filename string, content io.Reader) (string, error) {
	if principal == nil {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	if strings.TrimSpace(filename) == "" {
		return "", apperrors.NewValidationError("filename required", nil)
	}
	url, err := s.blobs.Upload(ctx, content, attachmentPath(filename), true)
	if err != nil {
		return "", apperrors.NewUpstream("file upload failed", err)
	}
	return url, nil
}

func attachmentPath(filename string) string {
	return fmt.Sprintf("issues/attachments/%d-%s", time.Now().UnixMilli(), filename)
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// stringPreview truncates on rune boundaries so multi-byte content
// never yields an invalid UTF-8 preview.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func (s *IssueService) publishEvent(ctx context.Context, principal *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if principal != nil {
		event.Actor = events.Actor{UserID: principal.ID, Role: principal.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
