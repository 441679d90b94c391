package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

type staticResolver struct {
	role domain.Role
}

func (r *staticResolver) ResolvePrincipal(ctx context.Context, claims *Claims) (*domain.User, error) {
	return &domain.User{ID: claims.SubjectID, Email: claims.Email, Role: r.role}, nil
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: map[string]time.Time{}}
}

func (r *memoryRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = until
	return nil
}

func (r *memoryRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	return ok && time.Now().Before(until), nil
}

func newTestApp(t *testing.T, tm *TokenManager, resolver PrincipalResolver, revoker TokenRevoker, guards ...fiber.Handler) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) (err error) {
		if err = c.Next(); err != nil {
			domainErr := apperrors.ToDomainError(err)
			c.Status(domainErr.HTTPStatus)
			err = c.JSON(fiber.Map{"error": fiber.Map{"code": domainErr.Code}})
		}
		return err
	})
	middleware := NewAuthMiddleware(tm, resolver, revoker, zap.NewNop())
	handlers := append([]fiber.Handler{middleware.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			t.Error("principal missing in handler")
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"id": principal.ID})
	})
	app.Get("/protected", handlers...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := newTestApp(t, tm, &staticResolver{role: domain.RoleClient}, newMemoryRevoker())

	token, _, err := tm.GenerateToken(&domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if status := doRequest(t, app, token); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
}

func TestMiddlewareRejectsMissingAndMalformed(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := newTestApp(t, tm, &staticResolver{role: domain.RoleClient}, newMemoryRevoker())

	if status := doRequest(t, app, ""); status != http.StatusUnauthorized {
		t.Errorf("missing header status = %d, want 401", status)
	}
	if status := doRequest(t, app, "garbage"); status != http.StatusUnauthorized {
		t.Errorf("malformed token status = %d, want 401", status)
	}

	other := NewTokenManager("other-secret", 5)
	token, _, err := other.GenerateToken(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if status := doRequest(t, app, token); status != http.StatusUnauthorized {
		t.Errorf("foreign secret status = %d, want 401", status)
	}
}

func TestMiddlewareRejectsRevokedToken(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	revoker := newMemoryRevoker()
	app := newTestApp(t, tm, &staticResolver{role: domain.RoleClient}, revoker)

	token, exp, err := tm.GenerateToken(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if status := doRequest(t, app, token); status != http.StatusOK {
		t.Fatalf("status before revocation = %d, want 200", status)
	}
	if err := revoker.Revoke(context.Background(), claims.ID, exp); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if status := doRequest(t, app, token); status != http.StatusUnauthorized {
		t.Fatalf("status after revocation = %d, want 401", status)
	}
}

type failingRevoker struct {
	err error
}

func (r *failingRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	return r.err
}

func (r *failingRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, r.err
}

func TestMiddlewareLogsRevocationBackendFailure(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	core, logs := observer.New(zapcore.ErrorLevel)

	app := fiber.New()
	middleware := NewAuthMiddleware(tm, &staticResolver{role: domain.RoleClient}, &failingRevoker{err: errors.New("redis unreachable")}, zap.New(core))
	app.Get("/protected", middleware.Handle, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token, _, err := tm.GenerateToken(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if status := doRequest(t, app, token); status != http.StatusOK {
		t.Fatalf("status = %d, token must still be accepted when the revocation backend is down", status)
	}

	entries := logs.FilterMessage("revocation check failed").All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	tests := []struct {
		name    string
		role    domain.Role
		allowed []domain.Role
		want    int
	}{
		{"admin allowed", domain.RoleAdmin, []domain.Role{domain.RoleAdmin}, http.StatusOK},
		{"team allowed among two", domain.RoleTeam, []domain.Role{domain.RoleTeam, domain.RoleAdmin}, http.StatusOK},
		{"client blocked", domain.RoleClient, []domain.Role{domain.RoleTeam, domain.RoleAdmin}, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tm, &staticResolver{role: tc.role}, newMemoryRevoker(), RequireRole(tc.allowed...))
			token, _, err := tm.GenerateToken(&domain.User{ID: "u1", Role: tc.role})
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if status := doRequest(t, app, token); status != tc.want {
				t.Fatalf("status = %d, want %d", status, tc.want)
			}
		})
	}
}
