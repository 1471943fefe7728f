package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/middleware"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/session"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Signup(&req)
	if err != nil {
		return dto.RespondError(c, err)
	}

	h.setSessionCookies(c, resp)
	return dto.JSON(c, fiber.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return dto.RespondError(c, err)
	}

	h.setSessionCookies(c, resp)
	return dto.JSON(c, fiber.StatusOK, resp)
}

// CheckAuth returns the user behind the access token.
func (h *AuthHandler) CheckAuth(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.authService.CurrentUser(userID)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.NewUserResponse(user, true))
}

// Refresh accepts the refresh token from the body or the refresh cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies(refreshCookie)
	}

	resp, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		h.clearSessionCookies(c)
		return dto.RespondError(c, err)
	}

	h.setSessionCookies(c, resp)
	return dto.JSON(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&req)
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies(refreshCookie)
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		return dto.RespondError(c, err)
	}

	h.clearSessionCookies(c)
	return dto.JSON(c, fiber.StatusOK, fiber.Map{"message": "Signed out successfully"})
}

func (h *AuthHandler) setSessionCookies(c *fiber.Ctx, resp *dto.AuthResponse) {
	c.Cookie(h.cookie(middleware.AccessCookie, resp.AccessToken, "/", resp.AccessExpiresAt))
	c.Cookie(h.cookie(refreshCookie, resp.RefreshToken, "/api/auth", resp.RefreshExpiresAt))
}

func (h *AuthHandler) clearSessionCookies(c *fiber.Ctx) {
	past := time.Unix(0, 0)
	c.Cookie(h.cookie(middleware.AccessCookie, "", "/", past))
	c.Cookie(h.cookie(refreshCookie, "", "/api/auth", past))
}

func (h *AuthHandler) cookie(name, value, path string, expires time.Time) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.cfg.CookieSecure {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   h.cfg.CookieDomain,
		Expires:  expires,
		Secure:   h.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: sameSite,
	}
}
