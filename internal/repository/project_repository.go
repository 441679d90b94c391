package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ProjectFilter captures project listing parameters.
type ProjectFilter struct {
	ClientID *string
	Statuses []domain.ProjectStatus
	Limit    int
	Offset   int
}

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListWithFilter(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Delete(ctx context.Context, id string) error
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (id, name, description, client_id, status, owner_user_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.ClientID,
		project.Status,
		project.UserID,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET name=$1, description=$2, client_id=$3, status=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.ClientID,
		project.Status,
		project.ID,
	).Scan(&project.UpdatedAt)
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT id, name, description, client_id, status, owner_user_id, created_at, updated_at
        FROM projects WHERE id=$1`
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.ClientID,
		&project.Status,
		&project.UserID,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListWithFilter(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	base := `SELECT id, name, description, client_id, status, owner_user_id, created_at, updated_at
             FROM projects`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
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

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.ClientID,
			&project.Status,
			&project.UserID,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

// Delete removes a project. Deleting an absent id is not an error.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	return err
}
