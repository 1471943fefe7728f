package apps

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/services"
)

// Deps is what the core hands to a plugin when mounting it.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Content *services.ContentService
}

// Plugin is an optional feature area that owns its models and routes.
type Plugin interface {
	// ID returns the unique plugin identifier, used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts plugin routes on the given Fiber group.
	// The group is already prefixed with /api and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, deps Deps)
}

// AdminPlugin extends Plugin with admin-specific route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has both JWT and Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, deps Deps)
}
