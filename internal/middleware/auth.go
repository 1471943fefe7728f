package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/session"
)

// AccessCookie carries the access token for browser clients that send
// credentials instead of an Authorization header.
const AccessCookie = "access_token"

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ContextKey:  session.ContextKey,
		TokenLookup: "header:Authorization,cookie:" + AccessCookie,
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized: invalid or expired token")
		},
	})
}
