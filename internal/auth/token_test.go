package auth

import (
	"testing"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	user := &domain.User{
		ID:          "u1",
		Email:       "a@example.com",
		DisplayName: "Alice",
		Role:        domain.RoleTeam,
	}

	token, exp, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if exp.IsZero() {
		t.Fatal("no expiry set")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != "u1" || claims.Email != "a@example.com" || claims.Role != domain.RoleTeam {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("no token id issued")
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 5)
	token, _, err := tm.GenerateToken(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewTokenManager("secret-b", 5)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("foreign secret accepted")
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tm.ParseToken(bad); err == nil {
			t.Errorf("ParseToken(%q) succeeded", bad)
		}
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	if tm.ttl <= 0 {
		t.Fatal("non-positive ttl not defaulted")
	}
}
