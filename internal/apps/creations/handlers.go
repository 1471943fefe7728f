package creations

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/session"
)

type CreationHandler struct {
	creationService *CreationService
}

func NewCreationHandler(creationService *CreationService) *CreationHandler {
	return &CreationHandler{creationService: creationService}
}

func parseID(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" ID")
	}
	return id, nil
}

// List handles GET /creations - paginated, newest first.
func (h *CreationHandler) List(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	page, limit := dto.Pagination(c)

	items, total, err := h.creationService.List(userID, page, limit)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.Page{Items: items, Total: total, Page: page, Limit: limit})
}

// Get handles GET /creations/:id.
func (h *CreationHandler) Get(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "creation")
	if err != nil {
		return dto.RespondError(c, err)
	}

	creation, err := h.creationService.Get(id, userID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, creation)
}

// Create handles POST /creations.
func (h *CreationHandler) Create(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req CreateCreationRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	creation, err := h.creationService.Create(userID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, creation)
}

// Delete handles DELETE /creations/:id - owner or admin.
func (h *CreationHandler) Delete(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "creation")
	if err != nil {
		return dto.RespondError(c, err)
	}

	actor := services.Actor{UserID: userID, Admin: session.IsAdmin(c)}
	if err := h.creationService.Delete(id, actor); err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Creation deleted"})
}

// Like handles POST /creations/:id/like - toggles.
func (h *CreationHandler) Like(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "creation")
	if err != nil {
		return dto.RespondError(c, err)
	}

	resp, err := h.creationService.ToggleLike(id, userID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, resp)
}

// Comments handles GET /creations/:id/comments.
func (h *CreationHandler) Comments(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "creation")
	if err != nil {
		return dto.RespondError(c, err)
	}

	comments, err := h.creationService.Comments(id, userID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, comments)
}

// AddComment handles POST /creations/:id/comments and, when :commentId is
// present, POST /creations/:id/comments/:commentId/replies.
func (h *CreationHandler) AddComment(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "creation")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var parentID *uuid.UUID
	if c.Params("commentId") != "" {
		pid, err := parseID(c, "commentId", "comment")
		if err != nil {
			return dto.RespondError(c, err)
		}
		parentID = &pid
	}
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	comment, err := h.creationService.AddComment(id, userID, parentID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, comment)
}

// LikeComment handles POST /creations/:id/comments/:commentId/like - toggles.
func (h *CreationHandler) LikeComment(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "creation")
	if err != nil {
		return dto.RespondError(c, err)
	}
	commentID, err := parseID(c, "commentId", "comment")
	if err != nil {
		return dto.RespondError(c, err)
	}

	resp, err := h.creationService.ToggleCommentLike(id, commentID, userID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, resp)
}
