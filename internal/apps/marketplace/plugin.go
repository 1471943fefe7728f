package marketplace

import (
	"github.com/gofiber/fiber/v2"

	"github.com/squadhub/squadhub-backend/internal/apps"
)

type MarketplacePlugin struct{}

func New() *MarketplacePlugin {
	return &MarketplacePlugin{}
}

func (p *MarketplacePlugin) ID() string { return "marketplace" }

func (p *MarketplacePlugin) Models() []interface{} {
	return []interface{}{
		&Service{},
		&Booking{},
		&Payment{},
	}
}

func (p *MarketplacePlugin) handler(deps apps.Deps) *MarketplaceHandler {
	return NewMarketplaceHandler(NewMarketplaceService(deps.DB, deps.Content), deps.Config)
}

func (p *MarketplacePlugin) RegisterRoutes(router fiber.Router, deps apps.Deps) {
	handler := p.handler(deps)

	router.Get("/services", handler.ListServices)
	router.Post("/services", handler.CreateService)
	router.Get("/services/:id", handler.GetService)

	router.Post("/bookings", handler.CreateBooking)
	router.Get("/bookings", handler.ListBookings)
	router.Get("/bookings/:id", handler.GetBooking)
	router.Put("/bookings/:id/status", handler.UpdateStatus)
	router.Post("/bookings/:id/payment-proof", handler.UploadProof)
	router.Get("/bookings/:id/payment-proof", handler.DownloadProof)
}

func (p *MarketplacePlugin) RegisterAdminRoutes(router fiber.Router, deps apps.Deps) {
	handler := p.handler(deps)

	router.Put("/services/:id/active", handler.SetServiceActive)
}
