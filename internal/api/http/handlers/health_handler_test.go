package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	return p.err
}

func newHealthApp(postgres, redis DependencyPinger) *fiber.App {
	app := fiber.New()
	h := NewHealthHandler("issue-tracker", "test", postgres, redis)
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)
	return app
}

func healthRequest(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, body
}

func TestReadyWithHealthyDependencies(t *testing.T) {
	app := newHealthApp(&fakePinger{}, &fakePinger{})

	status, body := healthRequest(t, app, "/health/ready")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ready" {
		t.Errorf("body = %+v", body)
	}
	deps, _ := body["dependencies"].(map[string]any)
	if deps["postgres"] != "ok" || deps["redis"] != "ok" {
		t.Errorf("dependencies = %+v", deps)
	}
}

func TestReadyReportsUnavailableDependency(t *testing.T) {
	tests := []struct {
		name     string
		postgres error
		redis    error
		wantDown string
	}{
		{"postgres down", errors.New("connection refused"), nil, "postgres"},
		{"redis down", nil, errors.New("connection refused"), "redis"},
		{"both down", errors.New("pg gone"), errors.New("redis gone"), "postgres"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newHealthApp(&fakePinger{err: tc.postgres}, &fakePinger{err: tc.redis})

			status, body := healthRequest(t, app, "/health/ready")
			if status != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", status)
			}
			errBody, _ := body["error"].(map[string]any)
			if errBody["code"] != "DEPENDENCY_UNAVAILABLE" {
				t.Errorf("code = %v", errBody["code"])
			}
			details, _ := errBody["details"].(map[string]any)
			if details[tc.wantDown] == "ok" {
				t.Errorf("details[%s] = ok, want error text", tc.wantDown)
			}
		})
	}
}

func TestLiveAlwaysOK(t *testing.T) {
	// liveness must not depend on backing services
	app := newHealthApp(&fakePinger{err: errors.New("down")}, &fakePinger{err: errors.New("down")})

	status, body := healthRequest(t, app, "/health/live")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "alive" {
		t.Errorf("body = %+v", body)
	}
}
