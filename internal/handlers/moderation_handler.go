package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
)

type ModerationHandler struct {
	reportService *services.ReportService
}

func NewModerationHandler(reportService *services.ReportService) *ModerationHandler {
	return &ModerationHandler{reportService: reportService}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	report, err := h.reportService.Create(actor.UserID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	page, limit := dto.Pagination(c)

	reports, total, err := h.reportService.List(c.Query("status"), page, limit)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.Page{Items: reports, Total: total, Page: page, Limit: limit})
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	reportID, err := paramID(c, "id", "report")
	if err != nil {
		return dto.RespondError(c, err)
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	report, err := h.reportService.Action(reportID, actor.UserID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, report)
}
