package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
)

type SquadHandler struct {
	squadService *services.SquadService
}

func NewSquadHandler(squadService *services.SquadService) *SquadHandler {
	return &SquadHandler{squadService: squadService}
}

func (h *SquadHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateSquadRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	squad, err := h.squadService.Create(actor.UserID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, squad)
}

func (h *SquadHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	page, limit := dto.Pagination(c)

	squads, total, err := h.squadService.List(actor.UserID, page, limit)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.Page{Items: squads, Total: total, Page: page, Limit: limit})
}

func (h *SquadHandler) Mine(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squads, err := h.squadService.Mine(actor.UserID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, squads)
}

func (h *SquadHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}

	squad, err := h.squadService.Get(squadID, actor)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, squad)
}

func (h *SquadHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req dto.UpdateSquadRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	squad, err := h.squadService.Update(squadID, actor, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, squad)
}

func (h *SquadHandler) Join(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}

	member, err := h.squadService.Join(squadID, actor.UserID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, member)
}

func (h *SquadHandler) Leave(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}

	if err := h.squadService.Leave(squadID, actor.UserID); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Left squad"})
}

// ManageMember handles {action: update-role|remove, role?}.
func (h *SquadHandler) ManageMember(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}
	targetID, err := paramID(c, "userId", "user")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req dto.ManageMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.squadService.ManageMember(squadID, targetID, actor, &req); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Member updated"})
}

func (h *SquadHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	squadID, err := paramID(c, "id", "squad")
	if err != nil {
		return dto.RespondError(c, err)
	}

	if err := h.squadService.Delete(squadID, actor); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Squad deleted"})
}
