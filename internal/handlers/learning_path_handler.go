package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
)

type LearningPathHandler struct {
	pathService *services.LearningPathService
}

func NewLearningPathHandler(pathService *services.LearningPathService) *LearningPathHandler {
	return &LearningPathHandler{pathService: pathService}
}

func (h *LearningPathHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}

	paths, err := h.pathService.List(squadID, actor)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, paths)
}

func (h *LearningPathHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}
	pathID, err := paramID(c, "pathId", "learning path")
	if err != nil {
		return dto.RespondError(c, err)
	}

	path, err := h.pathService.Get(squadID, pathID, actor)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, path)
}

func (h *LearningPathHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req dto.LearningPathRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	path, err := h.pathService.Create(squadID, actor, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, path)
}

func (h *LearningPathHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}
	pathID, err := paramID(c, "pathId", "learning path")
	if err != nil {
		return dto.RespondError(c, err)
	}

	if err := h.pathService.Delete(squadID, pathID, actor); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Learning path deleted"})
}
