package marketplace

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/models"
)

// Service is a peer offering listed by a provider.
type Service struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"provider_id"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"type:text;not null" json:"description"`
	Category    string      `gorm:"size:60;not null;index" json:"category"`
	Price       float64     `gorm:"not null;default:0" json:"price"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Provider    models.User `gorm:"foreignKey:ProviderID" json:"provider"`
}

type Booking struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"service_id"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	ProviderID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"provider_id"`
	Status      Status     `gorm:"size:20;not null;index" json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Note        string     `gorm:"type:text" json:"note"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Service     Service    `gorm:"foreignKey:ServiceID" json:"service"`
	Payment     *Payment   `gorm:"foreignKey:BookingID" json:"payment,omitempty"`
}

// Payment records the customer's uploaded proof of payment. Money does not
// move through the platform. The proof file lives outside any public path
// and is only served to the booking's participants.
type Payment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`
	Amount     float64   `gorm:"not null;default:0" json:"amount"`
	ProofFile  string    `gorm:"size:100;not null" json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`

	ProofURL string `gorm:"-" json:"proof_url,omitempty"`
}

func (p *Payment) AfterFind(*gorm.DB) error {
	p.setProofURL()
	return nil
}

func (p *Payment) setProofURL() {
	if p.ProofFile != "" {
		p.ProofURL = "/api/bookings/" + p.BookingID.String() + "/payment-proof"
	}
}

// --- DTOs ---

type CreateServiceRequest struct {
	Title       string  `json:"title" validate:"nonblank,max=200"`
	Description string  `json:"description" validate:"nonblank,max=5000"`
	Category    string  `json:"category" validate:"nonblank,max=60"`
	Price       float64 `json:"price" validate:"gte=0"`
}

type CreateBookingRequest struct {
	ServiceID   uuid.UUID  `json:"service_id" validate:"required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Note        string     `json:"note" validate:"max=1000"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=pending accepted ongoing completed cancelled"`
}

type ServiceActiveRequest struct {
	IsActive bool `json:"is_active"`
}
