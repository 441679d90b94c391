package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

// RouteConfig bundles handlers and middlewares for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Issues   *handlers.IssuesHandler
	Projects *handlers.ProjectsHandler
	Team     *handlers.TeamHandler

	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes mounts all HTTP routes on the app.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Patch("/me", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	issues := api.Group("/issues")
	issues.Get("/", cfg.Issues.List)
	issues.Post("/", cfg.Issues.Create)
	issues.Get("/:id", cfg.Issues.Get)
	issues.Patch("/:id", cfg.Issues.Update)
	issues.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Issues.Delete)
	issues.Get("/:id/comments", cfg.Issues.ListComments)
	issues.Post("/:id/comments", cfg.Issues.AddComment)
	issues.Get("/:id/attachments", cfg.Issues.ListAttachments)
	issues.Post("/:id/attachments", cfg.Issues.AddAttachment)
	issues.Delete("/:id/attachments/:attachmentID", cfg.Issues.DeleteAttachment)

	projects := api.Group("/projects")
	projects.Get("/", cfg.Projects.List)
	projects.Get("/:id", cfg.Projects.Get)
	projects.Post("/", auth.RequireRole(domain.RoleTeam, domain.RoleAdmin), cfg.Projects.Create)
	projects.Patch("/:id", auth.RequireRole(domain.RoleTeam, domain.RoleAdmin), cfg.Projects.Update)

	team := api.Group("/team")
	team.Get("/", auth.RequireRole(domain.RoleTeam, domain.RoleAdmin), cfg.Team.List)
	team.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Team.Invite)
	team.Patch("/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Team.ChangeRole)
	team.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Team.Remove)

	api.Get("/dashboard/stats", cfg.Issues.Stats)
	api.Post("/uploads", cfg.Issues.Upload)
}
