package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// AuthService coordinates registration, login and principal resolution.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	revoker    auth.TokenRevoker
	bcryptCost int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Revoker  auth.TokenRevoker
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revoker:    deps.Revoker,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. New signups get the client role;
// elevated roles are granted through team management.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		Role:         domain.RoleClient,
		PasswordHash: hash,
	}
	if user.DisplayName == "" {
		user.DisplayName = email
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	until := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revoker.Revoke(ctx, claims.ID, until); err != nil {
		return apperrors.NewUpstream("token revocation failed", err)
	}
	return nil
}

// ResolvePrincipal loads the user behind validated claims. A missing
// record is not an error: the user is provisioned with the client
// role, mirroring first-login auto-provisioning.
func (s *AuthService) ResolvePrincipal(ctx context.Context, claims *auth.Claims) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user = &domain.User{
		ID:          claims.SubjectID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Role:        domain.RoleClient,
	}
	if user.DisplayName == "" {
		user.DisplayName = claims.Email
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile changes a user's own display name and avatar.
func (s *AuthService) UpdateProfile(ctx context.Context, principal *domain.User, displayName string, avatarURL *string) (*domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": principal.ID})
		}
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(displayName); name != "" {
		user.DisplayName = name
	}
	if avatarURL != nil {
		user.AvatarURL = avatarURL
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
