package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/domain"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	paymentDomain "github.com/stayloop/service-booking/internal/domain/payment"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/gateway"
	"github.com/stayloop/service-booking/internal/lifecycle"
)

type stubBookingRepo struct {
	store map[uuid.UUID]*bookingDomain.Booking
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{store: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *stubBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	b, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return b, nil
}

func (r *stubBookingRepo) ListByGuest(context.Context, uuid.UUID) ([]*bookingDomain.Booking, error) {
	return nil, nil
}

func (r *stubBookingRepo) ListByListing(context.Context, uuid.UUID) ([]*bookingDomain.Booking, error) {
	return nil, nil
}

func (r *stubBookingRepo) ListAll(context.Context, int, int) ([]*bookingDomain.Booking, int64, error) {
	return nil, 0, nil
}

func (r *stubBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.store[b.ID()] = b
	return nil
}

func (r *stubBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.store[b.ID()] = b
	return nil
}

func (r *stubBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store, id)
	return nil
}

type stubPaymentRepo struct {
	store map[uuid.UUID]*paymentDomain.Payment
	saves int
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{store: make(map[uuid.UUID]*paymentDomain.Payment)}
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	return p, nil
}

func (r *stubPaymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	for _, p := range r.store {
		if p.BookingID() == bookingID {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", bookingID.String())
}

func (r *stubPaymentRepo) FindByReference(_ context.Context, reference string) (*paymentDomain.Payment, error) {
	for _, p := range r.store {
		if p.Reference() == reference {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", reference)
}

func (r *stubPaymentRepo) ListByGuest(context.Context, uuid.UUID) ([]*paymentDomain.Payment, error) {
	return nil, nil
}

func (r *stubPaymentRepo) ListAll(context.Context, int, int) ([]*paymentDomain.Payment, int64, error) {
	return nil, 0, nil
}

func (r *stubPaymentRepo) GetRevenueStats(context.Context) (int64, map[string]int64, error) {
	return 0, nil, nil
}

func (r *stubPaymentRepo) Save(_ context.Context, p *paymentDomain.Payment) error {
	r.store[p.ID()] = p
	r.saves++
	return nil
}

func (r *stubPaymentRepo) Update(_ context.Context, p *paymentDomain.Payment) error {
	r.store[p.ID()] = p
	return nil
}

func (r *stubPaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store, id)
	return nil
}

type stubListingRepo struct{}

func (stubListingRepo) Save(context.Context, *listingDomain.Listing) error   { return nil }
func (stubListingRepo) Update(context.Context, *listingDomain.Listing) error { return nil }
func (stubListingRepo) Delete(context.Context, uuid.UUID) error              { return nil }

func (stubListingRepo) FindByID(_ context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	return nil, domain.NewNotFoundError("Listing", id.String())
}

func (stubListingRepo) List(context.Context, listingDomain.ListFilter, int, int) ([]*listingDomain.Listing, int64, error) {
	return nil, 0, nil
}

func (stubListingRepo) ListByOwner(context.Context, uuid.UUID) ([]*listingDomain.Listing, error) {
	return nil, nil
}

type noopNotifier struct{}

func (noopNotifier) BookingConfirmed(context.Context, events.BookingConfirmedEvent) {}

type paymentServiceFixture struct {
	svc      *application.PaymentService
	bookings *stubBookingRepo
	payments *stubPaymentRepo
}

func newPaymentServiceFixture() *paymentServiceFixture {
	bookings := newStubBookingRepo()
	payments := newStubPaymentRepo()
	lc := lifecycle.NewBookingLifecycle(bookings, payments, stubListingRepo{}, gateway.NewMockClient(zap.NewNop()), noopNotifier{}, zap.NewNop())
	svc := application.NewPaymentService(payments, bookings, lc, zap.NewNop())
	return &paymentServiceFixture{svc: svc, bookings: bookings, payments: payments}
}

func (f *paymentServiceFixture) seedBooking(t *testing.T, guestID uuid.UUID) *bookingDomain.Booking {
	t.Helper()
	checkIn := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 3)
	b, err := bookingDomain.NewBooking(uuid.New(), guestID, "guest@example.com", "Sara", "Bekele", checkIn, checkOut, 10000)
	require.NoError(t, err)
	f.bookings.store[b.ID()] = b
	return b
}

func (f *paymentServiceFixture) seedInitiatedPayment(t *testing.T, b *bookingDomain.Booking) *paymentDomain.Payment {
	t.Helper()
	p := paymentDomain.NewPayment(b.ID(), b.GuestID(), b.TotalCents(), "")
	require.NoError(t, p.MarkInitiated("https://checkout.chapa.test/secret", "ref_secret"))
	f.payments.store[p.ID()] = p
	b.AttachPayment(p.ID())
	return p
}

func TestEnsurePayment_HidesOtherGuestsBooking(t *testing.T) {
	f := newPaymentServiceFixture()
	victim := uuid.New()
	b := f.seedBooking(t, victim)
	f.seedInitiatedPayment(t, b)

	attacker := uuid.New()
	dto, err := f.svc.EnsurePayment(context.Background(), b.ID(), attacker, false)

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, dto)
}

func TestEnsurePayment_DoesNotMintPaymentOnForeignBooking(t *testing.T) {
	f := newPaymentServiceFixture()
	b := f.seedBooking(t, uuid.New())

	_, err := f.svc.EnsurePayment(context.Background(), b.ID(), uuid.New(), false)

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.payments.saves, "no payment may be created for a booking the caller does not own")
}

func TestEnsurePayment_OwnerGetsExistingSession(t *testing.T) {
	f := newPaymentServiceFixture()
	guest := uuid.New()
	b := f.seedBooking(t, guest)
	p := f.seedInitiatedPayment(t, b)

	dto, err := f.svc.EnsurePayment(context.Background(), b.ID(), guest, false)

	require.NoError(t, err)
	assert.Equal(t, p.ID(), dto.ID)
	assert.Equal(t, "https://checkout.chapa.test/secret", dto.CheckoutURL)
	assert.Equal(t, "ref_secret", dto.Reference)
}

func TestEnsurePayment_StaffSeesAnyBooking(t *testing.T) {
	f := newPaymentServiceFixture()
	b := f.seedBooking(t, uuid.New())
	f.seedInitiatedPayment(t, b)

	dto, err := f.svc.EnsurePayment(context.Background(), b.ID(), uuid.New(), true)

	require.NoError(t, err)
	assert.Equal(t, b.ID(), dto.BookingID)
}
