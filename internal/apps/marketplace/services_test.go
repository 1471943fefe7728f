package marketplace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/services"
	"github.com/squadhub/squadhub-backend/internal/testutil"
)

type marketEnv struct {
	svc      *MarketplaceService
	fx       *testutil.Fixtures
	provider models.User
	customer models.User
	service  *Service
}

func newMarketEnv(t *testing.T) *marketEnv {
	t.Helper()
	db := testutil.SetupTestDB(t, New().Models()...)
	fx := testutil.NewFixtures(t, db)
	env := &marketEnv{
		svc:      NewMarketplaceService(db, services.NewContentService()),
		fx:       fx,
		provider: fx.CreateUser("Provider", nil, time.Now()),
		customer: fx.CreateUser("Customer", nil, time.Now()),
	}
	svc, err := env.svc.CreateService(env.provider.ID, &CreateServiceRequest{
		Title:       "Calculus tutoring",
		Description: "One hour sessions, details at https://tutor.example",
		Category:    "Tutoring",
		Price:       75000,
	})
	require.NoError(t, err)
	env.service = svc
	return env
}

func (e *marketEnv) book(t *testing.T) *Booking {
	t.Helper()
	b, err := e.svc.CreateBooking(e.customer.ID, &CreateBookingRequest{ServiceID: e.service.ID, Note: "<b>evenings</b>"})
	require.NoError(t, err)
	return b
}

func TestCreateService(t *testing.T) {
	env := newMarketEnv(t)
	assert.True(t, env.service.IsActive)
	assert.Equal(t, "Provider", env.service.Provider.Name)

	_, err := env.svc.CreateService(env.provider.ID, &CreateServiceRequest{
		Title:       "Visit www.spam.example",
		Description: "x",
		Category:    "Tutoring",
	})
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	list, total, err := env.svc.ListServices("tutoring", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}

func TestCreateBookingGuards(t *testing.T) {
	env := newMarketEnv(t)

	_, err := env.svc.CreateBooking(env.provider.ID, &CreateBookingRequest{ServiceID: env.service.ID})
	assert.ErrorIs(t, err, ErrOwnService)

	_, err = env.svc.SetServiceActive(env.service.ID, false)
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(env.customer.ID, &CreateBookingRequest{ServiceID: env.service.ID})
	assert.ErrorIs(t, err, ErrServiceInactive)

	list, total, err := env.svc.ListServices("", 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestBookingLifecycle(t *testing.T) {
	env := newMarketEnv(t)
	b := env.book(t)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "evenings", b.Note)
	assert.Equal(t, env.provider.ID, b.ProviderID)

	// pending cannot jump straight to ongoing
	_, err := env.svc.UpdateStatus(b.ID, env.provider.ID, &UpdateStatusRequest{Status: StatusOngoing})
	var te *TransitionError
	require.ErrorAs(t, err, &te)

	_, err = env.svc.UpdateStatus(b.ID, env.customer.ID, &UpdateStatusRequest{Status: StatusAccepted})
	assert.ErrorIs(t, err, ErrWrongParty)

	b, err = env.svc.UpdateStatus(b.ID, env.provider.ID, &UpdateStatusRequest{Status: StatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, b.Status)

	_, err = env.svc.UpdateStatus(b.ID, env.provider.ID, &UpdateStatusRequest{Status: StatusOngoing})
	assert.ErrorIs(t, err, ErrProofRequired)

	_, _, err = env.svc.AttachProof(b.ID, env.provider.ID, 0, "p.png")
	assert.ErrorIs(t, err, ErrProofCustomerOnly)

	payment, previous, err := env.svc.AttachProof(b.ID, env.customer.ID, 0, "a.png")
	require.NoError(t, err)
	assert.Empty(t, previous)
	assert.Equal(t, 75000.0, payment.Amount, "amount defaults to the service price")

	payment, previous, err = env.svc.AttachProof(b.ID, env.customer.ID, 80000, "b.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", previous)
	assert.Equal(t, 80000.0, payment.Amount)

	b, err = env.svc.UpdateStatus(b.ID, env.provider.ID, &UpdateStatusRequest{Status: StatusOngoing})
	require.NoError(t, err)
	assert.Equal(t, StatusOngoing, b.Status)
	require.NotNil(t, b.Payment)
	assert.Equal(t, "b.png", b.Payment.ProofFile)
	assert.Equal(t, "/api/bookings/"+b.ID.String()+"/payment-proof", b.Payment.ProofURL)

	_, _, err = env.svc.AttachProof(b.ID, env.customer.ID, 0, "c.png")
	assert.ErrorIs(t, err, ErrProofClosed)

	b, err = env.svc.UpdateStatus(b.ID, env.customer.ID, &UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)
	assert.True(t, Terminal(b.Status))

	_, err = env.svc.UpdateStatus(b.ID, env.customer.ID, &UpdateStatusRequest{Status: StatusCancelled})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestBookingVisibility(t *testing.T) {
	env := newMarketEnv(t)
	stranger := env.fx.CreateUser("Stranger", nil, time.Now())
	b := env.book(t)

	_, err := env.svc.GetBooking(b.ID, services.Actor{UserID: stranger.ID})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = env.svc.GetBooking(b.ID, services.Actor{UserID: stranger.ID, Admin: true})
	assert.NoError(t, err)

	_, err = env.svc.UpdateStatus(b.ID, stranger.ID, &UpdateStatusRequest{Status: StatusCancelled})
	assert.ErrorIs(t, err, ErrNotParticipant)

	asProvider, err := env.svc.ListBookings(env.provider.ID, "provider")
	require.NoError(t, err)
	assert.Len(t, asProvider, 1)

	asCustomer, err := env.svc.ListBookings(env.provider.ID, "customer")
	require.NoError(t, err)
	assert.Empty(t, asCustomer)

	_, err = env.svc.ListBookings(env.provider.ID, "owner")
	assert.ErrorIs(t, err, ErrInvalidListRole)
}
