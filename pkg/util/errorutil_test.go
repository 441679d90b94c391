package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("issue", nil), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", NewConflict("dup", nil), "CONFLICT", http.StatusConflict},
		{"upstream", NewUpstream("blob store down", errors.New("io")), "UPSTREAM_FAILED", http.StatusBadGateway},
		{"internal", NewInternalError(errors.New("x")), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"sql no rows", sql.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"generic", errors.New("anything"), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"wrapped domain", fmt.Errorf("outer: %w", NewForbidden("inner")), "FORBIDDEN", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			if got.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tc.wantCode)
			}
			if got.HTTPStatus != tc.wantStatus {
				t.Errorf("status = %d, want %d", got.HTTPStatus, tc.wantStatus)
			}
		})
	}

	if ToDomainError(nil) != nil {
		t.Error("nil error must map to nil")
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFound("issue", map[string]any{"issue_id": "i1"})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if domainErr.Message != "issue not found" {
		t.Errorf("message = %q", domainErr.Message)
	}
	if domainErr.Details["issue_id"] != "i1" {
		t.Errorf("details = %+v", domainErr.Details)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := NewUpstream("upload failed", inner)
	if !errors.Is(err, inner) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}
