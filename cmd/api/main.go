package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/issue-tracker/internal/api/http"
	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/persistence"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/service"
	"github.com/spec-kit/issue-tracker/internal/storage"
	"github.com/spec-kit/issue-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	blobStore, err := storage.NewDiskStore(cfg.Storage.Root, cfg.Storage.PublicBaseURL, logger)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)

	revoker := auth.NewRedisRevoker(rdb.Client)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Revoker:  revoker,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:      issueRepo,
		ProjectRepo:    projectRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		Blobs:          blobStore,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	projectService := service.NewProjectService(projectRepo, userRepo)
	directoryService := service.NewDirectoryService(userRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), authService, revoker, logger)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	app.Static("/files", blobStore.Root())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:           handlers.NewAuthHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Team:           handlers.NewTeamHandler(directoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
