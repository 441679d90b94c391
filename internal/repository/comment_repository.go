package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CommentRepository encapsulates comment persistence. Comments are
// append-only and listed oldest first for thread display.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (id, issue_id, user_id, content)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.IssueID,
		comment.UserID,
		comment.Content,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `
        UPDATE comments SET content=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, comment.Content, comment.ID).Scan(&comment.UpdatedAt)
}

func (r *commentRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, issue_id, user_id, content, created_at, updated_at
        FROM comments WHERE issue_id=$1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.IssueID,
			&comment.UserID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

// Delete removes a comment. Deleting an absent id is not an error.
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	return err
}
