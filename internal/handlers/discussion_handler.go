package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
)

type DiscussionHandler struct {
	discussionService *services.DiscussionService
}

func NewDiscussionHandler(discussionService *services.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{discussionService: discussionService}
}

func (h *DiscussionHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	materialID, err := paramID(c, "materialId", "material")
	if err != nil {
		return dto.RespondError(c, err)
	}

	threads, err := h.discussionService.List(materialID, actor)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, threads)
}

func (h *DiscussionHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	materialID, err := paramID(c, "materialId", "material")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req dto.CreateDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	discussion, err := h.discussionService.Create(materialID, actor, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, discussion)
}

func (h *DiscussionHandler) ToggleLike(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id", "discussion")
	if err != nil {
		return dto.RespondError(c, err)
	}

	resp, err := h.discussionService.ToggleLike(id, actor.UserID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, resp)
}

func (h *DiscussionHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id", "discussion")
	if err != nil {
		return dto.RespondError(c, err)
	}

	if err := h.discussionService.Delete(id, actor); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Discussion deleted"})
}
