package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/session"
)

func unauthorized(c *fiber.Ctx) error {
	return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func invalidBody(c *fiber.Ctx) error {
	return dto.Error(c, fiber.StatusBadRequest, "Invalid request body")
}

// actorFrom builds the service caller from the JWT in context.
func actorFrom(c *fiber.Ctx) (services.Actor, error) {
	userID, err := session.GetUserID(c)
	if err != nil {
		return services.Actor{}, err
	}
	return services.Actor{UserID: userID, Admin: session.IsAdmin(c)}, nil
}

// paramID parses a UUID route param; the error renders as a 400.
func paramID(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" ID")
	}
	return id, nil
}

// queryID parses an optional UUID query param.
func queryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return &id, nil
}
