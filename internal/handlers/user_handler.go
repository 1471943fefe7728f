package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/session"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	user, err := h.userService.Get(userID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.NewUserResponse(user, true))
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.NewUserResponse(user, true))
}

// Profile is the public view of another user; email is never included.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "user")
	if err != nil {
		return dto.RespondError(c, err)
	}
	user, err := h.userService.Get(id)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.NewUserResponse(user, false))
}

func (h *UserHandler) Schools(c *fiber.Ctx) error {
	schools, err := h.userService.ListSchools(c.Query("region"))
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, schools)
}
