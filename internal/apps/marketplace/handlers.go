package marketplace

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/session"
)

const proofSubdir = "payments"

var proofTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type MarketplaceHandler struct {
	svc *MarketplaceService
	cfg *config.Config
}

func NewMarketplaceHandler(svc *MarketplaceService, cfg *config.Config) *MarketplaceHandler {
	return &MarketplaceHandler{svc: svc, cfg: cfg}
}

func parseID(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+label+" ID")
	}
	return id, nil
}

// ListServices handles GET /services?category=.
func (h *MarketplaceHandler) ListServices(c *fiber.Ctx) error {
	page, limit := dto.Pagination(c)
	list, total, err := h.svc.ListServices(c.Query("category"), page, limit)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, dto.Page{Items: list, Total: total, Page: page, Limit: limit})
}

// GetService handles GET /services/:id.
func (h *MarketplaceHandler) GetService(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "service")
	if err != nil {
		return dto.RespondError(c, err)
	}
	svc, err := h.svc.GetService(id)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, svc)
}

// CreateService handles POST /services.
func (h *MarketplaceHandler) CreateService(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	svc, err := h.svc.CreateService(userID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, svc)
}

// SetServiceActive handles PUT /admin/services/:id/active.
func (h *MarketplaceHandler) SetServiceActive(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "service")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req ServiceActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	svc, err := h.svc.SetServiceActive(id, req.IsActive)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, svc)
}

// CreateBooking handles POST /bookings.
func (h *MarketplaceHandler) CreateBooking(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	booking, err := h.svc.CreateBooking(userID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusCreated, booking)
}

// ListBookings handles GET /bookings?as=customer|provider.
func (h *MarketplaceHandler) ListBookings(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	bookings, err := h.svc.ListBookings(userID, c.Query("as"))
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, bookings)
}

// GetBooking handles GET /bookings/:id - participants only.
func (h *MarketplaceHandler) GetBooking(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return dto.RespondError(c, err)
	}

	booking, err := h.svc.GetBooking(id, services.Actor{UserID: userID, Admin: session.IsAdmin(c)})
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, booking)
}

// UpdateStatus handles PUT /bookings/:id/status.
func (h *MarketplaceHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return dto.RespondError(c, err)
	}
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return dto.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	booking, err := h.svc.UpdateStatus(id, userID, &req)
	if err != nil {
		return dto.RespondError(c, err)
	}
	return dto.JSON(c, fiber.StatusOK, booking)
}

// UploadProof handles POST /bookings/:id/payment-proof - multipart "proof"
// file plus an optional "amount" field.
func (h *MarketplaceHandler) UploadProof(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return dto.RespondError(c, err)
	}

	file, err := c.FormFile("proof")
	if err != nil {
		return dto.Error(c, fiber.StatusBadRequest, "Proof file is required")
	}
	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	if file.Size > maxBytes {
		return dto.Error(c, fiber.StatusBadRequest, fmt.Sprintf("Proof must be smaller than %dMB", h.cfg.MaxUploadMB))
	}
	ext, err := sniffProofType(file)
	if err != nil {
		return dto.RespondError(c, err)
	}

	amount := 0.0
	if raw := strings.TrimSpace(c.FormValue("amount")); raw != "" {
		amount, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return dto.Error(c, fiber.StatusBadRequest, "amount must be a number")
		}
	}

	dir := filepath.Join(h.cfg.UploadDir, proofSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dto.RespondError(c, fmt.Errorf("failed to prepare upload dir: %w", err))
	}
	filename := uuid.New().String() + ext
	savePath := filepath.Join(dir, filename)
	if err := c.SaveFile(file, savePath); err != nil {
		return dto.RespondError(c, fmt.Errorf("failed to save proof: %w", err))
	}

	payment, previous, err := h.svc.AttachProof(id, userID, amount, filename)
	if err != nil {
		os.Remove(savePath)
		return dto.RespondError(c, err)
	}
	if previous != "" {
		old := filepath.Join(h.cfg.UploadDir, proofSubdir, filepath.Base(previous))
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove replaced payment proof", "path", old, "error", err)
		}
	}
	return dto.JSON(c, fiber.StatusCreated, payment)
}

// DownloadProof handles GET /bookings/:id/payment-proof. Only the booking's
// participants (and admins) can fetch the file.
func (h *MarketplaceHandler) DownloadProof(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return dto.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return dto.RespondError(c, err)
	}

	booking, err := h.svc.GetBooking(id, services.Actor{UserID: userID, Admin: session.IsAdmin(c)})
	if err != nil {
		return dto.RespondError(c, err)
	}
	if booking.Payment == nil || booking.Payment.ProofFile == "" {
		return dto.RespondError(c, ErrProofNotFound)
	}

	c.Set(fiber.HeaderCacheControl, "private, no-store")
	path := filepath.Join(h.cfg.UploadDir, proofSubdir, filepath.Base(booking.Payment.ProofFile))
	if err := c.SendFile(path); err != nil {
		return dto.RespondError(c, fmt.Errorf("failed to send proof: %w", err))
	}
	return nil
}

// sniffProofType checks the file's leading bytes rather than trusting the
// client-supplied Content-Type.
func sniffProofType(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Unreadable proof file")
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	ext, ok := proofTypes[http.DetectContentType(head[:n])]
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, "Proof must be a JPEG, PNG, WebP or PDF file")
	}
	return ext, nil
}
