// Package session reads the authenticated caller out of a Fiber context.
package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextKey is where the JWT middleware stores the parsed token.
const ContextKey = "user"

const adminKey = "is_admin"

var ErrNoSession = errors.New("no authenticated user")

func claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	return mc, ok
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, ok := claims(c)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// GetEmail returns the email claim, or "".
func GetEmail(c *fiber.Ctx) string {
	mc, ok := claims(c)
	if !ok {
		return ""
	}
	email, _ := mc["email"].(string)
	return email
}

// MarkAdmin records that the admin middleware accepted the caller.
func MarkAdmin(c *fiber.Ctx) {
	c.Locals(adminKey, true)
}

// IsAdmin reports whether the caller passed the admin check on this request,
// or carries the admin role claim.
func IsAdmin(c *fiber.Ctx) bool {
	if ok, _ := c.Locals(adminKey).(bool); ok {
		return true
	}
	mc, ok := claims(c)
	if !ok {
		return false
	}
	role, _ := mc["role"].(string)
	return role == "admin"
}
