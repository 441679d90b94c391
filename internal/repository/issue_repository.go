package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// IssueFilter captures issue listing parameters. A nil OwnerID means
// no ownership restriction; Limit <= 0 returns the full matching set.
type IssueFilter struct {
	OwnerID    *string
	ProjectID  *string
	AssigneeID *string
	Statuses   []domain.IssueStatus
	Priorities []domain.IssuePriority
	Limit      int
	Offset     int
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	Delete(ctx context.Context, id string) error
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (id, title, description, status, priority, project_id, reporter_id, assignee_id, owner_user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.ID,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.Priority,
		issue.ProjectID,
		issue.ReporterID,
		issue.AssigneeID,
		issue.UserID,
	).Scan(&issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET title=$1, description=$2, status=$3, priority=$4, project_id=$5,
            assignee_id=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.Priority,
		issue.ProjectID,
		issue.AssigneeID,
		issue.ID,
	).Scan(&issue.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        SELECT id, title, description, status, priority, project_id, reporter_id, assignee_id,
               owner_user_id, created_at, updated_at
        FROM issues WHERE id=$1`
	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Status,
		&issue.Priority,
		&issue.ProjectID,
		&issue.ReporterID,
		&issue.AssigneeID,
		&issue.UserID,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	base := `SELECT id, title, description, status, priority, project_id, reporter_id, assignee_id,
                    owner_user_id, created_at, updated_at
             FROM issues`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_user_id=$%d", len(args)))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, max(filter.Offset, 0))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

// Delete removes an issue. Deleting an absent id is not an error.
func (r *issueRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	return err
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.Title,
			&issue.Description,
			&issue.Status,
			&issue.Priority,
			&issue.ProjectID,
			&issue.ReporterID,
			&issue.AssigneeID,
			&issue.UserID,
			&issue.CreatedAt,
			&issue.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
