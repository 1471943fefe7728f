package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/squadhub/squadhub-backend/internal/apps"
	"github.com/squadhub/squadhub-backend/internal/apps/creations"
	"github.com/squadhub/squadhub-backend/internal/apps/marketplace"
	"github.com/squadhub/squadhub-backend/internal/cache"
	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/handlers"
	"github.com/squadhub/squadhub-backend/internal/logging"
	"github.com/squadhub/squadhub-backend/internal/routes"
	"github.com/squadhub/squadhub-backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	plugins := []apps.Plugin{
		creations.New(),
		marketplace.New(),
	}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	seeded, err := database.SeedSchools(database.DB, cfg.SchoolsSeedPath)
	if err != nil {
		slog.Error("school seeding failed", "path", cfg.SchoolsSeedPath, "error", err)
	} else if seeded > 0 {
		slog.Info("schools seeded", "count", seeded)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(),
		dbLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Leaderboard cache: Redis when configured, otherwise uncached
	var lbCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis unavailable, leaderboard cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			lbCache = rc
			slog.Info("redis connected", "addr", cfg.RedisAddr)
		}
	}

	// Services
	contentService := services.NewContentService()
	pointsService := services.NewPointsService(database.DB, lbCache, cfg.LeaderboardCacheTTL, cfg.Location())
	authService := services.NewAuthService(database.DB, cfg, pointsService)
	userService := services.NewUserService(database.DB, pointsService)
	if seeded > 0 {
		// seeding may move schools between regions
		pointsService.Invalidate(context.Background())
	}
	squadService := services.NewSquadService(database.DB)
	catalogService := services.NewCatalogService(database.DB)
	materialService := services.NewMaterialService(database.DB, squadService, catalogService, pointsService)
	pathService := services.NewLearningPathService(database.DB, squadService)
	discussionService := services.NewDiscussionService(database.DB, materialService, contentService)
	reportService := services.NewReportService(database.DB)

	// Handlers
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg),
		Health:       handlers.NewHealthHandler(),
		User:         handlers.NewUserHandler(userService),
		Points:       handlers.NewPointsHandler(pointsService),
		Squad:        handlers.NewSquadHandler(squadService),
		Catalog:      handlers.NewCatalogHandler(catalogService),
		Material:     handlers.NewMaterialHandler(materialService),
		LearningPath: handlers.NewLearningPathHandler(pathService),
		Discussion:   handlers.NewDiscussionHandler(discussionService),
		Moderation:   handlers.NewModerationHandler(reportService),
	}

	// Sentry error tracking
	sentryEnabled := false
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			sentryEnabled = true
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		slog.Error("upload dir unavailable", "path", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	app := routes.NewApp(cfg, sentryEnabled)
	routes.Setup(app, cfg, database.DB, h, plugins, apps.Deps{
		DB:      database.DB,
		Config:  cfg,
		Content: contentService,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := lbCache.Close(); err != nil {
		slog.Error("cache close error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
