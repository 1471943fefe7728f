package marketplace

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

var (
	ErrServiceNotFound   = apperr.NotFound("service not found")
	ErrBookingNotFound   = apperr.NotFound("booking not found")
	ErrServiceInactive   = apperr.Invalid("this service is not accepting bookings")
	ErrOwnService        = apperr.Invalid("you cannot book your own service")
	ErrNotParticipant    = apperr.Forbidden("you are not part of this booking")
	ErrProofCustomerOnly = apperr.Forbidden("only the customer can upload payment proof")
	ErrProofClosed       = apperr.Conflict("payment proof can only be uploaded while the booking is pending or accepted")
	ErrInvalidAmount     = apperr.Invalid("amount must be zero or more")
	ErrInvalidListRole   = apperr.Invalid("as must be one of: customer, provider")
	ErrProofNotFound     = apperr.NotFound("no payment proof uploaded")
)

type MarketplaceService struct {
	db      *gorm.DB
	content *services.ContentService
	now     func() time.Time
}

func NewMarketplaceService(db *gorm.DB, content *services.ContentService) *MarketplaceService {
	return &MarketplaceService{db: db, content: content, now: time.Now}
}

func (s *MarketplaceService) ListServices(category string, page, limit int) ([]Service, int64, error) {
	q := s.db.Model(&Service{}).Where("is_active = ?", true)
	if category = strings.TrimSpace(category); category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(category))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}
	var list []Service
	if err := q.Preload("Provider").Order("created_at DESC").Scopes(database.Paginate(page, limit)).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}
	return list, total, nil
}

func (s *MarketplaceService) GetService(id uuid.UUID) (*Service, error) {
	var svc Service
	if err := s.db.Preload("Provider").First(&svc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	return &svc, nil
}

func (s *MarketplaceService) CreateService(providerID uuid.UUID, req *CreateServiceRequest) (*Service, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	title, err := s.content.Clean(req.Title, false)
	if err != nil {
		return nil, err
	}
	description, err := s.content.Clean(req.Description, true)
	if err != nil {
		return nil, err
	}

	svc := Service{
		ID:          uuid.New(),
		ProviderID:  providerID,
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		IsActive:    true,
	}
	if err := s.db.Omit("Provider").Create(&svc).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s.GetService(svc.ID)
}

// SetServiceActive lists or unlists a service (admin moderation).
func (s *MarketplaceService) SetServiceActive(id uuid.UUID, active bool) (*Service, error) {
	res := s.db.Model(&Service{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update service: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrServiceNotFound
	}
	return s.GetService(id)
}

// CreateBooking opens a pending booking for an active service.
func (s *MarketplaceService) CreateBooking(customerID uuid.UUID, req *CreateBookingRequest) (*Booking, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	svc, err := s.GetService(req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	if svc.ProviderID == customerID {
		return nil, ErrOwnService
	}

	booking := Booking{
		ID:          uuid.New(),
		ServiceID:   svc.ID,
		CustomerID:  customerID,
		ProviderID:  svc.ProviderID,
		Status:      StatusPending,
		ScheduledAt: req.ScheduledAt,
		Note:        s.content.Sanitize(req.Note),
	}
	if booking.ScheduledAt != nil {
		utc := booking.ScheduledAt.UTC()
		booking.ScheduledAt = &utc
	}
	if err := s.db.Omit(clause.Associations).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return s.loadBooking(s.db, booking.ID)
}

// ListBookings returns the caller's bookings; as narrows to one side.
func (s *MarketplaceService) ListBookings(userID uuid.UUID, as string) ([]Booking, error) {
	q := s.db.Preload("Service.Provider").Preload("Payment")
	switch Party(as) {
	case "":
		q = q.Where("customer_id = ? OR provider_id = ?", userID, userID)
	case PartyCustomer:
		q = q.Where("customer_id = ?", userID)
	case PartyProvider:
		q = q.Where("provider_id = ?", userID)
	default:
		return nil, ErrInvalidListRole
	}

	var bookings []Booking
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *MarketplaceService) GetBooking(id uuid.UUID, actor services.Actor) (*Booking, error) {
	booking, err := s.loadBooking(s.db, id)
	if err != nil {
		return nil, err
	}
	if _, err := partyOf(booking, actor.UserID); err != nil && !actor.Admin {
		return nil, err
	}
	return booking, nil
}

// UpdateStatus moves a booking along the transition table. The write is
// conditional on the status read, so concurrent moves cannot both apply.
func (s *MarketplaceService) UpdateStatus(id, userID uuid.UUID, req *UpdateStatusRequest) (*Booking, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := s.loadBooking(tx, id)
		if err != nil {
			return err
		}
		party, err := partyOf(booking, userID)
		if err != nil {
			return err
		}
		hasProof := booking.Payment != nil && booking.Payment.ProofFile != ""
		if err := CheckTransition(booking.Status, req.Status, party, hasProof); err != nil {
			return err
		}

		res := tx.Model(&Booking{}).
			Where("id = ? AND status = ?", id, booking.Status).
			Update("status", req.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &TransitionError{From: booking.Status, To: req.Status}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadBooking(s.db, id)
}

// AttachProof records (or replaces) the payment proof of a booking. It
// returns the previous proof file name so the caller can remove the old file.
func (s *MarketplaceService) AttachProof(id, userID uuid.UUID, amount float64, proofFile string) (*Payment, string, error) {
	if amount < 0 {
		return nil, "", ErrInvalidAmount
	}

	var (
		payment  Payment
		previous string
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := s.loadBooking(tx, id)
		if err != nil {
			return err
		}
		party, err := partyOf(booking, userID)
		if err != nil {
			return err
		}
		if party != PartyCustomer {
			return ErrProofCustomerOnly
		}
		if !acceptsProof(booking.Status) {
			return ErrProofClosed
		}
		if amount == 0 {
			amount = booking.Service.Price
		}

		now := s.now().UTC()
		if booking.Payment != nil {
			previous = booking.Payment.ProofFile
			payment = *booking.Payment
			payment.Amount = amount
			payment.ProofFile = proofFile
			payment.UploadedAt = now
			payment.setProofURL()
			return tx.Model(&Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
				"amount":      amount,
				"proof_file":  proofFile,
				"uploaded_at": now,
			}).Error
		}
		payment = Payment{
			ID:         uuid.New(),
			BookingID:  id,
			Amount:     amount,
			ProofFile:  proofFile,
			UploadedAt: now,
		}
		payment.setProofURL()
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &payment, previous, nil
}

func (s *MarketplaceService) loadBooking(db *gorm.DB, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := db.Preload("Service.Provider").Preload("Payment").First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

func partyOf(b *Booking, userID uuid.UUID) (Party, error) {
	switch userID {
	case b.ProviderID:
		return PartyProvider, nil
	case b.CustomerID:
		return PartyCustomer, nil
	}
	return "", ErrNotParticipant
}
