package dto

import (
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/apperr"
)

// Envelope is the single response shape of every endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func Fail(message string) Envelope {
	return Envelope{Success: false, Error: message}
}

// JSON writes a success envelope with the given status.
func JSON(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(OK(data))
}

// Error writes a failure envelope with the given status and message.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Fail(message))
}

// RespondError maps a service error onto a status code. Unclassified errors
// become a generic 500; their text is logged and reported, never returned.
func RespondError(c *fiber.Ctx, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{
			Success: false,
			Error:   "Validation failed",
			Fields:  ve.Fields,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		return Error(c, fe.Code, fe.Message)
	}

	switch apperr.KindOf(err) {
	case apperr.KindInvalid:
		return Error(c, fiber.StatusBadRequest, apperr.Message(err))
	case apperr.KindUnauthorized:
		return Error(c, fiber.StatusUnauthorized, apperr.Message(err))
	case apperr.KindForbidden:
		return Error(c, fiber.StatusForbidden, apperr.Message(err))
	case apperr.KindNotFound:
		return Error(c, fiber.StatusNotFound, apperr.Message(err))
	case apperr.KindConflict:
		return Error(c, fiber.StatusConflict, apperr.Message(err))
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.Locals("requestid"),
		"error", err.Error(),
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	return Error(c, fiber.StatusInternalServerError, "Internal server error")
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

// Page is the data payload of paginated list endpoints.
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Pagination reads page/limit query params with sane bounds.
func Pagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	limit = c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
