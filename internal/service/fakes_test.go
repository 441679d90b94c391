package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.CreatedAt = time.Unix(int64(r.seq), 0)
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > 0 {
		if offset >= len(out) {
			return []domain.User{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeIssueRepo struct {
	mu     sync.Mutex
	issues map[string]*domain.Issue
	order  []string
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: map[string]*domain.Issue{}}
}

func (r *fakeIssueRepo) Create(ctx context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	stored := *issue
	r.issues[issue.ID] = &stored
	r.order = append(r.order, issue.ID)
	return nil
}

func (r *fakeIssueRepo) Update(ctx context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[issue.ID]; !ok {
		return pgx.ErrNoRows
	}
	issue.UpdatedAt = time.Now()
	stored := *issue
	r.issues[issue.ID] = &stored
	return nil
}

func (r *fakeIssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *issue
	return &out, nil
}

func (r *fakeIssueRepo) ListWithFilter(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	for i := len(r.order) - 1; i >= 0; i-- {
		issue, ok := r.issues[r.order[i]]
		if !ok {
			continue
		}
		if filter.OwnerID != nil && issue.UserID != *filter.OwnerID {
			continue
		}
		if filter.ProjectID != nil && issue.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.AssigneeID != nil && (issue.AssigneeID == nil || *issue.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, issue.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, issue.Priority) {
			continue
		}
		out = append(out, *issue)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeIssueRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.issues, id)
	return nil
}

func containsStatus(statuses []domain.IssueStatus, s domain.IssueStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.IssuePriority, p domain.IssuePriority) bool {
	for _, candidate := range priorities {
		if candidate == p {
			return true
		}
	}
	return false
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	order    []string
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*domain.Project{}}
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	stored := *project
	r.projects[project.ID] = &stored
	r.order = append(r.order, project.ID)
	return nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	project.UpdatedAt = time.Now()
	stored := *project
	r.projects[project.ID] = &stored
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *project
	return &out, nil
}

func (r *fakeProjectRepo) ListWithFilter(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Project
	for i := len(r.order) - 1; i >= 0; i-- {
		project, ok := r.projects[r.order[i]]
		if !ok {
			continue
		}
		if filter.ClientID != nil && project.ClientID != *filter.ClientID {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, s := range filter.Statuses {
				if project.Status == s {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *project)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		if r.comments[i].ID == comment.ID {
			comment.UpdatedAt = time.Now()
			r.comments[i] = *comment
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeCommentRepo) ListByIssue(ctx context.Context, issueID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.IssueID == issueID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		if r.comments[i].ID == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments []domain.Attachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{}
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.CreatedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByIssue(ctx context.Context, issueID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attachment
	for i := len(r.attachments) - 1; i >= 0; i-- {
		if r.attachments[i].IssueID == issueID {
			out = append(out, r.attachments[i])
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.attachments {
		if r.attachments[i].ID == id {
			r.attachments = append(r.attachments[:i], r.attachments[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeBlobStore records uploads in memory and can be told to fail for
// blob paths containing a marker substring.
type fakeBlobStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	failOn  string
	err     error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: map[string][]byte{}}
}

func (s *fakeBlobStore) Upload(ctx context.Context, content io.Reader, blobPath string, overwrite bool) (string, error) {
	if s.failOn != "" && strings.Contains(blobPath, s.failOn) {
		return "", s.err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[blobPath] = data
	return "http://files.test/" + blobPath, nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, blobPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, blobPath)
	return nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]time.Time{}}
}

func (r *fakeRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = until
	return nil
}

func (r *fakeRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	return ok && time.Now().Before(until), nil
}
