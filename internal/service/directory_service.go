package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/policy"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// DirectoryService manages team composition: listing members,
// inviting, changing roles and removal. Mutations are admin-only,
// enforced here independently of any route-level gating.
type DirectoryService struct {
	users repository.UserRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// ListMembers returns all users, newest first. Team members may view;
// clients may not reach the directory at all.
func (s *DirectoryService) ListMembers(ctx context.Context, principal *domain.User, limit, offset int) ([]domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !policy.Can(principal.Role, policy.ActionViewTeam) {
		return nil, apperrors.NewForbidden("role may not view the team directory")
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Invite creates an account for a new member with the given role.
func (s *DirectoryService) Invite(ctx context.Context, principal *domain.User, email, displayName string, role domain.Role) (*domain.User, error) {
	if err := s.requireManage(principal); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		Role:        role,
	}
	if user.DisplayName == "" {
		user.DisplayName = email
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ChangeRole assigns a different role to an existing user.
func (s *DirectoryService) ChangeRole(ctx context.Context, principal *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if err := s.requireManage(principal); err != nil {
		return nil, err
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Remove deletes a member. Deleting an absent id is not an error.
func (s *DirectoryService) Remove(ctx context.Context, principal *domain.User, userID string) error {
	if err := s.requireManage(principal); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *DirectoryService) requireManage(principal *domain.User) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !policy.Can(principal.Role, policy.ActionManageTeam) {
		return apperrors.NewForbidden("role may not manage the team")
	}
	return nil
}
