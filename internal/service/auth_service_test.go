package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeRevoker) {
	users := newFakeUserRepo()
	revoker := newFakeRevoker()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: users, Revoker: revoker})
	return svc, users, revoker
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	user, token, exp, err := svc.Register(ctx, "Alice@Example.com", "Alice", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.Role != domain.RoleClient {
		t.Errorf("role = %s, want client", user.Role)
	}
	if token == "" || exp.Before(time.Now()) {
		t.Error("no usable token issued")
	}

	if _, _, _, err := svc.Register(ctx, "alice@example.com", "Other", "pw"); err == nil {
		t.Fatal("duplicate email accepted")
	} else if code := domainCode(t, err); code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", code)
	}

	logged, _, _, err := svc.Login(ctx, "ALICE@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Error("login resolved a different user")
	}

	if _, _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	} else if code := domainCode(t, err); code != "UNAUTHORIZED" {
		t.Fatalf("code = %s, want UNAUTHORIZED", code)
	}
	if _, _, _, err := svc.Login(ctx, "ghost@example.com", "pw"); err == nil {
		t.Fatal("unknown email accepted")
	} else if code := domainCode(t, err); code != "UNAUTHORIZED" {
		t.Fatalf("code = %s, want UNAUTHORIZED", code)
	}
}

func TestResolvePrincipalProvisionsClient(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	claims := &auth.Claims{
		SubjectID:   "sso-123",
		Email:       "new@example.com",
		DisplayName: "New Person",
	}
	user, err := svc.ResolvePrincipal(ctx, claims)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Role != domain.RoleClient {
		t.Errorf("provisioned role = %s, want client", user.Role)
	}
	if user.ID != "sso-123" {
		t.Errorf("id = %s, want claim subject", user.ID)
	}

	stored, err := users.GetByID(ctx, "sso-123")
	if err != nil {
		t.Fatalf("provisioned user not persisted: %v", err)
	}
	if stored.Email != "new@example.com" {
		t.Errorf("stored email = %q", stored.Email)
	}

	// resolving again returns the same record, no duplicate provisioning
	again, err := svc.ResolvePrincipal(ctx, claims)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ID != user.ID || again.Role != user.Role {
		t.Error("second resolve diverged from stored record")
	}
}

func TestResolvePrincipalKeepsExistingRole(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	if err := users.Create(ctx, &domain.User{ID: "u1", Email: "t@example.com", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	user, err := svc.ResolvePrincipal(ctx, &auth.Claims{SubjectID: "u1", Email: "t@example.com"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("role = %s, existing record must win", user.Role)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, revoker := newAuthFixture()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "a@example.com", "", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = user

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}

	revoked, err := revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !revoked {
		t.Fatal("token not revoked after logout")
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	seed := &domain.User{ID: "u1", Email: "a@example.com", DisplayName: "Old", Role: domain.RoleClient}
	if err := users.Create(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	avatar := "http://cdn.test/a.png"
	updated, err := svc.UpdateProfile(ctx, seed, "New Name", &avatar)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.DisplayName != "New Name" {
		t.Errorf("display name = %q", updated.DisplayName)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != avatar {
		t.Error("avatar not applied")
	}

	// blank name keeps the existing one
	kept, err := svc.UpdateProfile(ctx, seed, "   ", nil)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if kept.DisplayName != "New Name" {
		t.Errorf("display name = %q, blank input must not clear it", kept.DisplayName)
	}
}
