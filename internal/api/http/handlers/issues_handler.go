package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// IssuesHandler manages issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// List GET /api/issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issues, err := h.service.List(c.Context(), principal, parseIssueQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/issues/:id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issue, err := h.service.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// Create POST /api/issues. Accepts JSON, or multipart form data with
// an optional "files" part for create-with-attachments.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return h.createMultipart(c, principal)
	}

	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.service.Create(c.Context(), principal, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

func (h *IssuesHandler) createMultipart(c *fiber.Ctx, principal *domain.User) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("invalid multipart payload", nil)
	}

	input := service.IssueCreateInput{
		Title:       formValue(form.Value, "title"),
		Description: formValue(form.Value, "description"),
		Priority:    domain.IssuePriority(formValue(form.Value, "priority")),
		ProjectID:   formValue(form.Value, "project_id"),
	}

	var files []service.FileUpload
	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable file part", map[string]any{"filename": header.Filename})
		}
		defer file.Close()
		files = append(files, service.FileUpload{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Content:  file,
		})
	}

	issue, attachments, err := h.service.CreateWithAttachments(c.Context(), principal, input, files)
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"issue":       issueResponse(issue),
		"attachments": items,
	}})
}

// Update PATCH /api/issues/:id.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	issue, err := h.service.Update(c.Context(), principal, c.Params("id"), service.IssueUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// Delete DELETE /api/issues/:id.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListComments GET /api/issues/:id/comments.
func (h *IssuesHandler) ListComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	comments, err := h.service.ListComments(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /api/issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.Context(), principal, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListAttachments GET /api/issues/:id/attachments.
func (h *IssuesHandler) ListAttachments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	attachments, err := h.service.ListAttachments(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddAttachment POST /api/issues/:id/attachments.
func (h *IssuesHandler) AddAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := h.service.AddAttachment(c.Context(), principal, c.Params("id"), service.AttachmentInput{
		Filename: req.Filename,
		FileURL:  req.FileURL,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// DeleteAttachment DELETE /api/issues/:id/attachments/:attachmentID.
func (h *IssuesHandler) DeleteAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteAttachment(c.Context(), principal, c.Params("id"), c.Params("attachmentID")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Upload POST /api/uploads.
func (h *IssuesHandler) Upload(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file part required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable file part", map[string]any{"filename": header.Filename})
	}
	defer file.Close()

	url, err := h.service.UploadFile(c.Context(), principal, header.Filename, file)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{PublicURL: url}})
}

// Stats GET /api/dashboard/stats.
func (h *IssuesHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.service.Stats(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func parseIssueQuery(c *fiber.Ctx) service.IssueListFilter {
	filter := service.IssueListFilter{}
	if projectID := c.Query("project_id"); projectID != "" {
		filter.ProjectID = &projectID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.IssueStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.IssuePriority(strings.TrimSpace(part)))
		}
	}
	if pageSize := parseInt(c.Query("page_size"), 0); pageSize > 0 {
		page := parseInt(c.Query("page"), 1)
		filter.Offset = (page - 1) * pageSize
		filter.Limit = pageSize
	}
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func formValue(values map[string][]string, key string) string {
	if vals := values[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		Priority:    issue.Priority,
		ProjectID:   issue.ProjectID,
		ReporterID:  issue.ReporterID,
		AssigneeID:  issue.AssigneeID,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		IssueID:   comment.IssueID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         attachment.ID,
		IssueID:    attachment.IssueID,
		Filename:   attachment.Filename,
		FileURL:    attachment.FileURL,
		FileSize:   attachment.FileSize,
		MimeType:   attachment.MimeType,
		UploadedBy: attachment.UploadedBy,
		CreatedAt:  attachment.CreatedAt,
	}
}
