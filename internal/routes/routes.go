package routes

import (
	"errors"
	"log/slog"
	"time"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/apps"
	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/handlers"
	"github.com/squadhub/squadhub-backend/internal/middleware"
)

// Handlers groups the core HTTP handlers mounted by Setup.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	User         *handlers.UserHandler
	Points       *handlers.PointsHandler
	Squad        *handlers.SquadHandler
	Catalog      *handlers.CatalogHandler
	Material     *handlers.MaterialHandler
	LearningPath *handlers.LearningPathHandler
	Discussion   *handlers.DiscussionHandler
	Moderation   *handlers.ModerationHandler
}

// NewApp builds the Fiber app with the global middleware chain.
func NewApp(cfg *config.Config, withSentry bool) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})

	if withSentry {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	return app
}

// ErrorHandler renders router-level errors (unknown route, oversized body,
// recovered panics) in the standard envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}
	return dto.Error(c, code, message)
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	h Handlers,
	plugins []apps.Plugin,
	deps apps.Deps,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return dto.Error(c, fiber.StatusTooManyRequests, "Too many requests")
		},
	}))

	jwt := middleware.JWTProtected(cfg)
	adminOnly := middleware.AdminRequired(db, cfg)

	api.Get("/health", h.Health.Check)

	// Auth: stricter rate limit, 20 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               20,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return dto.Error(c, fiber.StatusTooManyRequests, "Too many attempts, try again later")
		},
	}))
	auth.Post("/signup", h.Auth.Signup)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/signout", h.Auth.Signout)
	auth.Get("/check-auth", jwt, h.Auth.CheckAuth)

	// Users & schools
	api.Get("/schools", h.User.Schools)
	users := api.Group("/users", jwt)
	users.Get("/me", h.User.Me)
	users.Put("/me", h.User.UpdateMe)
	users.Get("/:id", h.User.Profile)

	// Points & leaderboards (reads are public)
	points := api.Group("/points")
	points.Get("/leaderboard/:category/:region?", h.Points.Leaderboard)
	points.Get("/schools/rankings", h.Points.SchoolRankings)
	points.Get("/user/:id", h.Points.UserPoints)
	points.Post("/", jwt, adminOnly, h.Points.Award)

	// Catalog (writes are admin only)
	categories := api.Group("/categories")
	categories.Get("/", h.Catalog.ListCategories)
	categories.Get("/:id", h.Catalog.GetCategory)
	categories.Post("/", jwt, adminOnly, h.Catalog.CreateCategory)
	categories.Put("/:id", jwt, adminOnly, h.Catalog.UpdateCategory)
	categories.Delete("/:id", jwt, adminOnly, h.Catalog.DeleteCategory)

	subcategories := api.Group("/subcategories")
	subcategories.Get("/", h.Catalog.ListSubcategories)
	subcategories.Get("/:id", h.Catalog.GetSubcategory)
	subcategories.Post("/", jwt, adminOnly, h.Catalog.CreateSubcategory)
	subcategories.Put("/:id", jwt, adminOnly, h.Catalog.UpdateSubcategory)
	subcategories.Delete("/:id", jwt, adminOnly, h.Catalog.DeleteSubcategory)

	// Course materials and progress
	materials := api.Group("/materials", jwt)
	materials.Get("/", h.Material.List(false))
	materials.Post("/", adminOnly, h.Material.Create(false))
	materials.Get("/:id/progress", h.Material.GetProgress)
	materials.Put("/:id/progress", h.Material.UpdateProgress)
	materials.Get("/:id", h.Material.Get(false))
	materials.Put("/:id", h.Material.Update(false))
	materials.Delete("/:id", h.Material.Delete(false))

	// Squads, squad materials and learning paths
	squads := api.Group("/squads", jwt)
	squads.Get("/", h.Squad.List)
	squads.Post("/", h.Squad.Create)
	squads.Get("/mine", h.Squad.Mine)
	squads.Get("/:id", h.Squad.Get)
	squads.Put("/:id", h.Squad.Update)
	squads.Delete("/:id", h.Squad.Delete)
	squads.Post("/:id/join", h.Squad.Join)
	squads.Post("/:id/leave", h.Squad.Leave)
	squads.Put("/:id/members/:userId", h.Squad.ManageMember)

	squads.Get("/:id/materials", h.Material.List(true))
	squads.Post("/:id/materials", h.Material.Create(true))
	squads.Get("/:id/materials/:materialId", h.Material.Get(true))
	squads.Put("/:id/materials/:materialId", h.Material.Update(true))
	squads.Delete("/:id/materials/:materialId", h.Material.Delete(true))

	squads.Get("/:id/learningPaths", h.LearningPath.List)
	squads.Post("/:id/learningPaths", h.LearningPath.Create)
	squads.Get("/:id/learningPaths/:pathId", h.LearningPath.Get)
	squads.Delete("/:id/learningPaths/:pathId", h.LearningPath.Delete)

	// Discussions
	discussions := api.Group("/discussions", jwt)
	discussions.Get("/material/:materialId", h.Discussion.List)
	discussions.Post("/material/:materialId", h.Discussion.Create)
	discussions.Post("/:id/like", h.Discussion.ToggleLike)
	discussions.Delete("/:id", h.Discussion.Delete)

	// Moderation
	api.Post("/reports", jwt, h.Moderation.CreateReport)

	admin := api.Group("/admin", jwt, adminOnly)
	admin.Get("/reports", h.Moderation.ListReports)
	admin.Put("/reports/:id", h.Moderation.ActionReport)

	// Plugins mount last: their group carries the JWT middleware for every
	// remaining /api path.
	protected := api.Group("", jwt)
	for _, p := range plugins {
		p.RegisterRoutes(protected, deps)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, deps)
		}
	}
}
