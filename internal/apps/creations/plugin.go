package creations

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/apps"
)

type CreationsPlugin struct{}

func New() *CreationsPlugin {
	return &CreationsPlugin{}
}

func (p *CreationsPlugin) ID() string { return "creations" }

func (p *CreationsPlugin) Models() []interface{} {
	return []interface{}{
		&Creation{},
		&CreationLike{},
		&CreationComment{},
		&CommentLike{},
	}
}

func (p *CreationsPlugin) RegisterRoutes(router fiber.Router, deps apps.Deps) {
	svc := NewCreationService(deps.DB, deps.Content)
	handler := NewCreationHandler(svc)

	router.Get("/creations", handler.List)
	router.Post("/creations", handler.Create)
	router.Get("/creations/:id", handler.Get)
	router.Delete("/creations/:id", handler.Delete)
	router.Post("/creations/:id/like", handler.Like)
	router.Get("/creations/:id/comments", handler.Comments)
	router.Post("/creations/:id/comments", handler.AddComment)
	router.Post("/creations/:id/comments/:commentId/replies", handler.AddComment)
	router.Post("/creations/:id/comments/:commentId/like", handler.LikeComment)
}
