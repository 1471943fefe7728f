package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/session"
)

// AdminRequired must run after JWTProtected. It accepts, in order:
// 1. the X-Admin-Token header
// 2. the role claim of the token
// 3. config-based admin emails/IDs
// 4. the user's role in the database
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := ParseCSV(cfg.AdminEmails)
	adminUserIDs := ParseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			session.MarkAdmin(c)
			return c.Next()
		}

		userID, err := session.GetUserID(c)
		if err != nil {
			return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		if session.IsAdmin(c) ||
			contains(adminEmails, strings.ToLower(session.GetEmail(c))) ||
			contains(adminUserIDs, userID.String()) ||
			hasAdminRole(db, userID) {
			session.MarkAdmin(c)
			return c.Next()
		}

		return dto.Error(c, fiber.StatusForbidden, "Admin access required")
	}
}

func hasAdminRole(db *gorm.DB, userID uuid.UUID) bool {
	var user models.User
	if err := db.Select("id", "role").First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	return user.Role == models.RoleAdmin
}

// ParseCSV splits a comma-separated config value, lowercasing entries.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
