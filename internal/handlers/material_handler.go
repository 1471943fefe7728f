package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
)

// MaterialHandler serves both course materials (/materials/:id) and squad
// materials (/squads/:id/materials/:materialId). The squadScoped flag picks
// which route params identify the squad and the material.
type MaterialHandler struct {
	materialService *services.MaterialService
}

func NewMaterialHandler(materialService *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

func scopeFrom(c *fiber.Ctx, squadScoped bool) (*uuid.UUID, error) {
	if !squadScoped {
		return nil, nil
	}
	id, err := paramID(c, "id", "squad")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func materialIDFrom(c *fiber.Ctx, squadScoped bool) (uuid.UUID, error) {
	if squadScoped {
		return paramID(c, "materialId", "material")
	}
	return paramID(c, "id", "material")
}

func (h *MaterialHandler) List(squadScoped bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return unauthorized(c)
		}
		squadID, err := scopeFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}
		subcategoryID, err := queryID(c, "subcategory_id")
		if err != nil {
			return dto.RespondError(c, err)
		}
		page, limit := dto.Pagination(c)

		materials, total, err := h.materialService.List(actor, squadID, subcategoryID, page, limit)
		if err != nil {
			return dto.RespondError(c, err)
		}
		return dto.JSON(c, fiber.StatusOK, dto.Page{Items: materials, Total: total, Page: page, Limit: limit})
	}
}

func (h *MaterialHandler) Get(squadScoped bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return unauthorized(c)
		}
		squadID, err := scopeFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}
		id, err := materialIDFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}

		material, err := h.materialService.Get(actor, squadID, id)
		if err != nil {
			return dto.RespondError(c, err)
		}
		return dto.JSON(c, fiber.StatusOK, material)
	}
}

func (h *MaterialHandler) Create(squadScoped bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return unauthorized(c)
		}
		squadID, err := scopeFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}
		var req dto.MaterialRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}

		material, err := h.materialService.Create(actor, squadID, &req)
		if err != nil {
			return dto.RespondError(c, err)
		}
		return dto.JSON(c, fiber.StatusCreated, material)
	}
}

func (h *MaterialHandler) Update(squadScoped bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return unauthorized(c)
		}
		squadID, err := scopeFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}
		id, err := materialIDFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}
		var req dto.MaterialRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}

		material, err := h.materialService.Update(actor, squadID, id, &req)
		if err != nil {
			return dto.RespondError(c, err)
		}
		return dto.JSON(c, fiber.StatusOK, material)
	}
}

func (h *MaterialHandler) Delete(squadScoped bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorFrom(c)
		if err != nil {
			return unauthorized(c)
		}
		squadID, err := scopeFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}
		id, err := materialIDFrom(c, squadScoped)
		if err != nil {
			return dto.RespondError(c, err)
		}

		if err := h.materialService.Delete(actor, squadID, id); err != nil {
			return dto.RespondError(c, err)
		}
		return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Material deleted"})
	}
}

func (h *MaterialHandler) GetProgress(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id", "material")
	if err != nil {
		return dto.RespondError(c, err)
	}

	progress, err := h.materialService.GetProgress(actor, id)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, progress)
}

func (h *MaterialHandler) UpdateProgress(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "id", "material")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req dto.ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.materialService.UpdateProgress(c.UserContext(), actor, id, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, resp)
}
