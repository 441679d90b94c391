package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// AttachmentRepository encapsulates attachment persistence.
// Attachments are immutable once created.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.Attachment, error)
	Delete(ctx context.Context, id string) error
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository instantiates repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (id, issue_id, filename, file_url, file_size, mime_type, uploaded_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.ID,
		attachment.IssueID,
		attachment.Filename,
		attachment.FileURL,
		attachment.FileSize,
		attachment.MimeType,
		attachment.UploadedBy,
	).Scan(&attachment.CreatedAt)
}

func (r *attachmentRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, issue_id, filename, file_url, file_size, mime_type, uploaded_by, created_at
        FROM attachments WHERE issue_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.IssueID,
			&attachment.Filename,
			&attachment.FileURL,
			&attachment.FileSize,
			&attachment.MimeType,
			&attachment.UploadedBy,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}

// Delete removes an attachment record. Deleting an absent id is not an error.
func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id=$1`, id)
	return err
}
