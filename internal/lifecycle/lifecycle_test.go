package lifecycle_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	paymentDomain "github.com/stayloop/service-booking/internal/domain/payment"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/gateway"
	"github.com/stayloop/service-booking/internal/lifecycle"
)

// --- In-memory fakes ---

type fakeBookingRepo struct {
	store map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{store: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func copyBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	var pid *uuid.UUID
	if b.PaymentID() != nil {
		v := *b.PaymentID()
		pid = &v
	}
	return bookingDomain.Reconstitute(b.ID(), b.ListingID(), b.GuestID(),
		b.GuestEmail(), b.GuestFirstName(), b.GuestLastName(),
		b.CheckIn(), b.CheckOut(), b.TotalCents(), b.Status(), pid,
		b.Version(), b.CreatedAt(), b.UpdatedAt())
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	b, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) ListByGuest(_ context.Context, guestID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var out []*bookingDomain.Booking
	for _, b := range r.store {
		if b.GuestID() == guestID {
			out = append(out, copyBooking(b))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByListing(_ context.Context, listingID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var out []*bookingDomain.Booking
	for _, b := range r.store {
		if b.ListingID() == listingID {
			out = append(out, copyBooking(b))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, b := range r.store {
		out = append(out, copyBooking(b))
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.store[b.ID()] = copyBooking(b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	stored, ok := r.store[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if stored.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified concurrently")
	}
	r.store[b.ID()] = copyBooking(b)
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store, id)
	return nil
}

type fakePaymentRepo struct {
	store map[uuid.UUID]*paymentDomain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{store: make(map[uuid.UUID]*paymentDomain.Payment)}
}

func copyPayment(p *paymentDomain.Payment) *paymentDomain.Payment {
	return paymentDomain.Reconstitute(p.ID(), p.BookingID(), p.GuestID(),
		p.AmountCents(), p.Currency(), p.Status(),
		p.TransactionID(), p.Reference(), p.CheckoutURL(),
		p.Version(), p.CreatedAt(), p.UpdatedAt())
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	p, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	return copyPayment(p), nil
}

func (r *fakePaymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	for _, p := range r.store {
		if p.BookingID() == bookingID {
			return copyPayment(p), nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", bookingID.String())
}

func (r *fakePaymentRepo) FindByReference(_ context.Context, reference string) (*paymentDomain.Payment, error) {
	for _, p := range r.store {
		if p.Reference() == reference && reference != "" {
			return copyPayment(p), nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", reference)
}

func (r *fakePaymentRepo) ListByGuest(_ context.Context, guestID uuid.UUID) ([]*paymentDomain.Payment, error) {
	var out []*paymentDomain.Payment
	for _, p := range r.store {
		if p.GuestID() == guestID {
			out = append(out, copyPayment(p))
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListAll(_ context.Context, _, _ int) ([]*paymentDomain.Payment, int64, error) {
	var out []*paymentDomain.Payment
	for _, p := range r.store {
		out = append(out, copyPayment(p))
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) GetRevenueStats(_ context.Context) (int64, map[string]int64, error) {
	var revenue int64
	counts := make(map[string]int64)
	for _, p := range r.store {
		counts[string(p.Status())]++
		if p.Status() == paymentDomain.StatusCompleted {
			revenue += p.AmountCents()
		}
	}
	return revenue, counts, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *paymentDomain.Payment) error {
	r.store[p.ID()] = copyPayment(p)
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *paymentDomain.Payment) error {
	stored, ok := r.store[p.ID()]
	if !ok {
		return domain.NewNotFoundError("Payment", p.ID().String())
	}
	if stored.Version() != p.Version()-1 {
		return domain.NewConflictError("payment was modified concurrently")
	}
	r.store[p.ID()] = copyPayment(p)
	return nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store, id)
	return nil
}

type fakeListingRepo struct {
	store map[uuid.UUID]*listingDomain.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{store: make(map[uuid.UUID]*listingDomain.Listing)}
}

func (r *fakeListingRepo) Save(_ context.Context, l *listingDomain.Listing) error {
	r.store[l.ID()] = l
	return nil
}

func (r *fakeListingRepo) Update(_ context.Context, l *listingDomain.Listing) error {
	r.store[l.ID()] = l
	return nil
}

func (r *fakeListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store, id)
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	l, ok := r.store[id]
	if !ok {
		return nil, domain.NewNotFoundError("Listing", id.String())
	}
	return l, nil
}

func (r *fakeListingRepo) List(_ context.Context, _ listingDomain.ListFilter, _, _ int) ([]*listingDomain.Listing, int64, error) {
	return nil, 0, nil
}

func (r *fakeListingRepo) ListByOwner(_ context.Context, _ uuid.UUID) ([]*listingDomain.Listing, error) {
	return nil, nil
}

// fakeGateway counts calls and returns scripted results. onVerify runs
// before the result is returned so tests can interleave concurrent writes.
type fakeGateway struct {
	initiateCalls int
	verifyCalls   int
	initiateErr   error
	verifyStatus  string
	verifyErr     error
	onVerify      func()
}

func (g *fakeGateway) Initiate(_ context.Context, params gateway.InitiateParams) (*gateway.InitiateResult, error) {
	g.initiateCalls++
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	return &gateway.InitiateResult{
		CheckoutURL: "https://checkout.chapa.co/pay/" + params.TxRef,
		Reference:   "ref_" + params.TxRef,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*gateway.VerifyResult, error) {
	g.verifyCalls++
	if g.onVerify != nil {
		g.onVerify()
	}
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &gateway.VerifyResult{Status: g.verifyStatus, TransactionID: "txn_" + reference}, nil
}

type fakeNotifier struct {
	calls  int
	events []events.BookingConfirmedEvent
}

func (n *fakeNotifier) BookingConfirmed(_ context.Context, event events.BookingConfirmedEvent) {
	n.calls++
	n.events = append(n.events, event)
}

// --- Test fixture ---

type fixture struct {
	bookings *fakeBookingRepo
	payments *fakePaymentRepo
	listings *fakeListingRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
	manager  *lifecycle.BookingLifecycle
	listing  *listingDomain.Listing
	guest    lifecycle.GuestDetails
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		bookings: newFakeBookingRepo(),
		payments: newFakePaymentRepo(),
		listings: newFakeListingRepo(),
		gateway:  &fakeGateway{verifyStatus: gateway.VerifySuccess},
		notifier: &fakeNotifier{},
	}
	f.manager = lifecycle.NewBookingLifecycle(f.bookings, f.payments, f.listings, f.gateway, f.notifier, zap.NewNop())

	l, err := listingDomain.NewListing(uuid.New(), "Lakeside Villa", "A villa by the lake",
		"1 Lake Rd", "Addis Ababa", "AA", "1000", 10000, 3, 2, 6, listingDomain.PropertyVilla)
	require.NoError(t, err)
	require.NoError(t, f.listings.Save(context.Background(), l))
	f.listing = l

	f.guest = lifecycle.GuestDetails{
		ID:        uuid.New(),
		Email:     "guest@example.com",
		FirstName: "Abel",
		LastName:  "Tesfaye",
	}
	return f
}

func (f *fixture) createBooking(t *testing.T) *bookingDomain.Booking {
	t.Helper()
	b, _, err := f.manager.CreateBooking(context.Background(),
		f.listing.ID(), f.guest,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return b
}

// --- Tests ---

func TestCreateBooking_CreatesPendingPaymentWithDerivedTotal(t *testing.T) {
	f := newFixture(t)

	b, p, err := f.manager.CreateBooking(context.Background(),
		f.listing.ID(), f.guest,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// 3 nights at 100.00 per night.
	assert.Equal(t, int64(30000), b.TotalCents())
	assert.Equal(t, bookingDomain.StatusPending, b.Status())
	assert.Equal(t, paymentDomain.StatusPending, p.Status())
	assert.Equal(t, int64(30000), p.AmountCents())

	stored, err := f.bookings.FindByID(context.Background(), b.ID())
	require.NoError(t, err)
	require.True(t, stored.HasPayment())
	assert.Equal(t, p.ID(), *stored.PaymentID())
	assert.Equal(t, 0, f.gateway.initiateCalls, "no gateway call at creation time")
}

func TestCreateBooking_UnavailableListing(t *testing.T) {
	f := newFixture(t)
	f.listing.SetAvailability(false)

	_, _, err := f.manager.CreateBooking(context.Background(),
		f.listing.ID(), f.guest,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestInitiatePayment_SecondCallReturnsSameSession(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	first, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)
	require.NotEmpty(t, first.PaymentURL)
	require.NotEmpty(t, first.Reference)

	second, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)

	assert.Equal(t, first.PaymentURL, second.PaymentURL)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Equal(t, 1, f.gateway.initiateCalls, "exactly one upstream gateway call")
}

func TestInitiatePayment_GatewayErrorLeavesPaymentUntouched(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)
	f.gateway.initiateErr = &gateway.Error{
		Reason:     gateway.ReasonAPIStatus,
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"provider exploded"}`,
	}

	_, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))

	var derr *domain.DomainError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Message, "500")
	assert.Contains(t, derr.Details, "provider exploded")

	p, err := f.payments.FindByBookingID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.False(t, p.HasCheckoutURL())
	assert.Empty(t, p.Reference())
	assert.Equal(t, paymentDomain.StatusPending, p.Status())

	// Initiation is retryable after the failure.
	f.gateway.initiateErr = nil
	result, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)
	assert.NotEmpty(t, result.PaymentURL)
}

func TestHandleVerification_SuccessConfirmsAndNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	session, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)

	first, err := f.manager.HandleVerification(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.Equal(t, "completed", first.PaymentStatus)
	assert.Equal(t, "confirmed", first.BookingStatus)

	// A repeated callback is a no-op: no gateway call, no second notification.
	second, err := f.manager.HandleVerification(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.Equal(t, "completed", second.PaymentStatus)
	assert.Equal(t, "confirmed", second.BookingStatus)

	assert.Equal(t, 1, f.gateway.verifyCalls)
	assert.Equal(t, 1, f.notifier.calls, "notification dispatched exactly once")

	require.Len(t, f.notifier.events, 1)
	event := f.notifier.events[0]
	assert.Equal(t, b.ID(), event.BookingID)
	assert.Equal(t, "guest@example.com", event.GuestEmail)
	assert.Equal(t, "Lakeside Villa", event.ListingTitle)
	assert.Equal(t, int64(30000), event.AmountCents)
}

func TestHandleVerification_FailedLeavesBookingUntouched(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)
	f.gateway.verifyStatus = gateway.VerifyFailed

	session, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)

	result, err := f.manager.HandleVerification(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.Equal(t, "failed", result.PaymentStatus)
	assert.Equal(t, "pending", result.BookingStatus)

	stored, err := f.bookings.FindByID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPending, stored.Status(), "booking is neither cancelled nor confirmed")
	assert.Equal(t, 0, f.notifier.calls)
}

func TestHandleVerification_ProviderStillPending(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)
	f.gateway.verifyStatus = gateway.VerifyPending

	session, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)

	result, err := f.manager.HandleVerification(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.Equal(t, "pending", result.PaymentStatus)
	assert.Equal(t, "pending", result.BookingStatus)

	// Nothing terminal yet, so a later verification still reaches the gateway.
	f.gateway.verifyStatus = gateway.VerifySuccess
	result, err = f.manager.HandleVerification(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.Equal(t, "completed", result.PaymentStatus)
	assert.Equal(t, 2, f.gateway.verifyCalls)
}

func TestHandleVerification_UnknownReference(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.HandleVerification(context.Background(), "ref_unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestHandleVerification_LosingRaceConvergesWithoutNotification(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	session, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)

	// While the gateway call is in flight a concurrent verification settles
	// the payment. The compare-and-set update must lose and converge.
	f.gateway.onVerify = func() {
		stored := f.payments.store[session.PaymentID]
		require.NoError(t, stored.Complete("txn_concurrent"))
		stored.IncrementVersion()
	}

	result, err := f.manager.HandleVerification(context.Background(), session.Reference)
	require.NoError(t, err)
	assert.Equal(t, "completed", result.PaymentStatus)

	assert.Equal(t, 0, f.notifier.calls, "the losing verification must not notify")

	stored, err := f.payments.FindByID(context.Background(), session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, "txn_concurrent", stored.TransactionID(), "winner's transaction id kept")
}

func TestCheckStatus_RequiresInitiation(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	p, err := f.payments.FindByBookingID(context.Background(), b.ID())
	require.NoError(t, err)

	_, err = f.manager.CheckStatus(context.Background(), p.ID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCheckStatus_SettlesLikeVerification(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	session, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)

	result, err := f.manager.CheckStatus(context.Background(), session.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, "completed", result.PaymentStatus)
	assert.Equal(t, "confirmed", result.BookingStatus)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestConfirm_RejectsNonPending(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	_, err := f.manager.Confirm(context.Background(), b.ID())
	require.NoError(t, err)

	_, err = f.manager.Confirm(context.Background(), b.ID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	stored, err := f.bookings.FindByID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, stored.Status())
}

func TestCancel_CancelsPendingPayment(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	_, err := f.manager.Cancel(context.Background(), b.ID())
	require.NoError(t, err)

	stored, err := f.bookings.FindByID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCancelled, stored.Status())

	p, err := f.payments.FindByBookingID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, paymentDomain.StatusCancelled, p.Status())
}

func TestCancel_KeepsSettledPayment(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	session, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)
	_, err = f.manager.HandleVerification(context.Background(), session.Reference)
	require.NoError(t, err)

	_, err = f.manager.Cancel(context.Background(), b.ID())
	require.NoError(t, err)

	// Settled funds stay settled; only the booking is cancelled.
	p, err := f.payments.FindByBookingID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, paymentDomain.StatusCompleted, p.Status())

	stored, err := f.bookings.FindByID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCancelled, stored.Status())
}

func TestCancel_ReCancelReportsError(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	_, err := f.manager.Cancel(context.Background(), b.ID())
	require.NoError(t, err)

	_, err = f.manager.Cancel(context.Background(), b.ID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestReschedule_SyncsPaymentAmount(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	updated, err := f.manager.Reschedule(context.Background(), b.ID(),
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), updated.TotalCents())

	p, err := f.payments.FindByBookingID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(50000), p.AmountCents())
}

func TestReschedule_BlockedAfterInitiation(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	_, err := f.manager.InitiatePayment(context.Background(), b.ID())
	require.NoError(t, err)

	_, err = f.manager.Reschedule(context.Background(), b.ID(),
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestEnsurePayment_ReturnsExistingPayment(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	first, err := f.manager.EnsurePayment(context.Background(), b.ID())
	require.NoError(t, err)

	second, err := f.manager.EnsurePayment(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
}

func TestEnsurePayment_RecreatesMissingPayment(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking(t)

	existing, err := f.payments.FindByBookingID(context.Background(), b.ID())
	require.NoError(t, err)
	require.NoError(t, f.payments.Delete(context.Background(), existing.ID()))

	p, err := f.manager.EnsurePayment(context.Background(), b.ID())
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID(), p.ID())
	assert.Equal(t, b.TotalCents(), p.AmountCents())
	assert.Equal(t, paymentDomain.StatusPending, p.Status())
}
