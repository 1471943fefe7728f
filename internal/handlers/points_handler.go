package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
)

type PointsHandler struct {
	pointsService *services.PointsService
}

func NewPointsHandler(pointsService *services.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

type awardRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Value  int       `json:"value"`
}

// Leaderboard serves /points/leaderboard/:category/:region?. The region may
// also come from ?region=.
func (h *PointsHandler) Leaderboard(c *fiber.Ctx) error {
	category, err := services.ParseCategory(c.Params("category"))
	if err != nil {
		return dto.RespondError(c, err)
	}

	region := c.Params("region")
	if unescaped, err := url.PathUnescape(region); err == nil {
		region = unescaped
	}
	if region == "" {
		region = c.Query("region")
	}

	board, err := h.pointsService.Leaderboard(c.UserContext(), category, region)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, board)
}

func (h *PointsHandler) SchoolRankings(c *fiber.Ctx) error {
	board, err := h.pointsService.Leaderboard(c.UserContext(), services.CategorySchool, c.Query("region"))
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, board)
}

func (h *PointsHandler) UserPoints(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "user")
	if err != nil {
		return dto.RespondError(c, err)
	}
	summary, err := h.pointsService.UserSummary(c.UserContext(), id)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, summary)
}

// Award grants bonus points; admin only.
func (h *PointsHandler) Award(c *fiber.Ctx) error {
	var req awardRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.UserID == uuid.Nil {
		return dto.Error(c, fiber.StatusBadRequest, "user_id is required")
	}

	point, err := h.pointsService.AwardBonus(c.UserContext(), req.UserID, req.Value)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, point)
}
