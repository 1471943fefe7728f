package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/dto"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy"
	}

	return dto.JSON(c, fiber.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
