package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	paymentDomain "github.com/stayloop/service-booking/internal/domain/payment"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/gateway"
)

// Notifier dispatches a confirmation when a booking is confirmed. Dispatch is
// fire-and-forget; implementations swallow their own failures.
type Notifier interface {
	BookingConfirmed(ctx context.Context, event events.BookingConfirmedEvent)
}

// GuestDetails is the contact information captured at booking creation.
type GuestDetails struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
}

// InitiatePaymentResult is returned when a checkout session exists for a
// booking, whether newly created or previously initiated.
type InitiatePaymentResult struct {
	PaymentURL string
	PaymentID  uuid.UUID
	Reference  string
}

// VerificationResult reports the statuses after a verification pass.
type VerificationResult struct {
	PaymentStatus string
	BookingStatus string
}

// BookingLifecycle owns every status transition of a booking and its
// companion payment. All gateway I/O goes through the injected client and is
// performed without holding any record lock; the compare-and-set repository
// updates afterwards are the only point of exclusive access.
type BookingLifecycle struct {
	bookings bookingDomain.BookingRepository
	payments paymentDomain.PaymentRepository
	listings listingDomain.ListingRepository
	gateway  gateway.Client
	notifier Notifier
	logger   *zap.Logger
}

// NewBookingLifecycle creates a new BookingLifecycle.
func NewBookingLifecycle(
	bookings bookingDomain.BookingRepository,
	payments paymentDomain.PaymentRepository,
	listings listingDomain.ListingRepository,
	gw gateway.Client,
	notifier Notifier,
	logger *zap.Logger,
) *BookingLifecycle {
	return &BookingLifecycle{
		bookings: bookings,
		payments: payments,
		listings: listings,
		gateway:  gw,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateBooking creates a pending booking plus its companion pending payment.
// The total is nights times the listing's nightly price; no gateway call is
// made yet.
func (m *BookingLifecycle) CreateBooking(ctx context.Context, listingID uuid.UUID, guest GuestDetails, checkIn, checkOut time.Time) (*bookingDomain.Booking, *paymentDomain.Payment, error) {
	l, err := m.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}
	if !l.IsAvailable() {
		return nil, nil, domain.NewValidationError("listing is not available")
	}

	b, err := bookingDomain.NewBooking(listingID, guest.ID, guest.Email, guest.FirstName, guest.LastName, checkIn, checkOut, l.PriceCents())
	if err != nil {
		return nil, nil, err
	}
	p := paymentDomain.NewPayment(b.ID(), guest.ID, b.TotalCents(), paymentDomain.DefaultCurrency)

	saga := NewSaga("create_booking", m.logger)

	saga.AddStep(SagaStep{
		Name: "save_booking",
		Execute: func(ctx context.Context) error {
			return m.bookings.Save(ctx, b)
		},
		Compensate: func(ctx context.Context) error {
			return m.bookings.Delete(ctx, b.ID())
		},
	})

	saga.AddStep(SagaStep{
		Name: "save_payment",
		Execute: func(ctx context.Context) error {
			return m.payments.Save(ctx, p)
		},
		Compensate: func(ctx context.Context) error {
			return m.payments.Delete(ctx, p.ID())
		},
	})

	saga.AddStep(SagaStep{
		Name: "attach_payment",
		Execute: func(ctx context.Context) error {
			b.AttachPayment(p.ID())
			b.IncrementVersion()
			return m.bookings.Update(ctx, b)
		},
		Compensate: nil,
	})

	if err := saga.Execute(ctx); err != nil {
		return nil, nil, err
	}

	m.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("payment_id", p.ID().String()),
		zap.Int64("total_cents", b.TotalCents()),
	)
	return b, p, nil
}

// Confirm transitions a pending booking to confirmed. Any other current
// status is reported as a client error.
func (m *BookingLifecycle) Confirm(ctx context.Context, bookingID uuid.UUID) (*bookingDomain.Booking, error) {
	b, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Confirm(); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	if err := m.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel transitions a booking to cancelled and cancels its companion
// payment unless the payment has already settled. Re-cancelling an already
// cancelled booking is reported as a client error without side effects.
func (m *BookingLifecycle) Cancel(ctx context.Context, bookingID uuid.UUID) (*bookingDomain.Booking, error) {
	b, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	if err := m.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	if b.HasPayment() {
		p, err := m.payments.FindByID(ctx, *b.PaymentID())
		if err != nil {
			return nil, err
		}
		if err := p.Cancel(); err != nil {
			// A settled or already cancelled payment stays as it is.
			m.logger.Info("payment not cancelled with booking",
				zap.String("payment_id", p.ID().String()),
				zap.String("status", string(p.Status())),
			)
			return b, nil
		}
		p.IncrementVersion()
		if err := m.payments.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Complete transitions a confirmed booking to completed. Completion is a
// manual step performed after the stay ends.
func (m *BookingLifecycle) Complete(ctx context.Context, bookingID uuid.UUID) (*bookingDomain.Booking, error) {
	b, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Complete(); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	if err := m.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Reschedule moves the date range of a pending booking and keeps the
// companion payment amount in sync. A booking whose payment already has a
// checkout session cannot be rescheduled.
func (m *BookingLifecycle) Reschedule(ctx context.Context, bookingID uuid.UUID, checkIn, checkOut time.Time) (*bookingDomain.Booking, error) {
	b, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var p *paymentDomain.Payment
	if b.HasPayment() {
		p, err = m.payments.FindByID(ctx, *b.PaymentID())
		if err != nil {
			return nil, err
		}
		if p.HasCheckoutURL() {
			return nil, domain.NewConflictError("payment already initiated, booking cannot be rescheduled")
		}
	}

	l, err := m.listings.FindByID(ctx, b.ListingID())
	if err != nil {
		return nil, err
	}

	if err := b.Reschedule(checkIn, checkOut, l.PriceCents()); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	if err := m.bookings.Update(ctx, b); err != nil {
		return nil, err
	}

	if p != nil {
		if err := p.SyncAmount(b.TotalCents()); err != nil {
			return nil, err
		}
		p.IncrementVersion()
		if err := m.payments.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// EnsurePayment returns the booking's companion payment, creating a pending
// one when the booking has none yet. Safe to call repeatedly.
func (m *BookingLifecycle) EnsurePayment(ctx context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	b, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	p, err := m.payments.FindByBookingID(ctx, bookingID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p = paymentDomain.NewPayment(b.ID(), b.GuestID(), b.TotalCents(), paymentDomain.DefaultCurrency)
	if err := m.payments.Save(ctx, p); err != nil {
		return nil, err
	}
	b.AttachPayment(p.ID())
	b.IncrementVersion()
	if err := m.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return p, nil
}

// InitiatePayment obtains a checkout session for a booking's payment. When
// the payment already holds a checkout URL the existing session is returned
// unchanged and no gateway call is made.
func (m *BookingLifecycle) InitiatePayment(ctx context.Context, bookingID uuid.UUID) (*InitiatePaymentResult, error) {
	b, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	p, err := m.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if p.HasCheckoutURL() {
		return &InitiatePaymentResult{
			PaymentURL: p.CheckoutURL(),
			PaymentID:  p.ID(),
			Reference:  p.Reference(),
		}, nil
	}
	if p.Status() != paymentDomain.StatusPending {
		return nil, domain.NewInvalidStateError(string(p.Status()), "initiated")
	}

	l, err := m.listings.FindByID(ctx, b.ListingID())
	if err != nil {
		return nil, err
	}

	params := gateway.InitiateParams{
		AmountCents: p.AmountCents(),
		Currency:    p.Currency(),
		Email:       b.GuestEmail(),
		FirstName:   b.GuestFirstName(),
		LastName:    b.GuestLastName(),
		TxRef:       transactionRef(b.ID(), b.GuestID()),
		Title:       fmt.Sprintf("Payment for %s", l.Title()),
		Description: fmt.Sprintf("Booking for %d nights at %s", b.Nights(), l.Title()),
	}

	result, err := m.gateway.Initiate(ctx, params)
	if err != nil {
		// Payment stays untouched so initiation can be retried.
		return nil, upstreamError(err)
	}

	if err := p.MarkInitiated(result.CheckoutURL, result.Reference); err != nil {
		return nil, err
	}
	p.IncrementVersion()
	if err := m.payments.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent initiation won; converge on its session.
			return m.existingSession(ctx, bookingID)
		}
		return nil, err
	}

	m.logger.Info("payment initiated",
		zap.String("booking_id", b.ID().String()),
		zap.String("payment_id", p.ID().String()),
		zap.String("reference", result.Reference),
	)
	return &InitiatePaymentResult{
		PaymentURL: result.CheckoutURL,
		PaymentID:  p.ID(),
		Reference:  result.Reference,
	}, nil
}

func (m *BookingLifecycle) existingSession(ctx context.Context, bookingID uuid.UUID) (*InitiatePaymentResult, error) {
	p, err := m.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !p.HasCheckoutURL() {
		return nil, domain.NewConflictError("payment was modified concurrently")
	}
	return &InitiatePaymentResult{
		PaymentURL: p.CheckoutURL(),
		PaymentID:  p.ID(),
		Reference:  p.Reference(),
	}, nil
}

// HandleVerification verifies a gateway reference and reconciles the payment
// and booking statuses. Safe to call any number of times for the same
// reference.
func (m *BookingLifecycle) HandleVerification(ctx context.Context, reference string) (*VerificationResult, error) {
	p, err := m.payments.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return m.applyVerification(ctx, p)
}

// CheckStatus is the manual re-poll variant of HandleVerification, keyed by
// local payment ID.
func (m *BookingLifecycle) CheckStatus(ctx context.Context, paymentID uuid.UUID) (*VerificationResult, error) {
	p, err := m.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Reference() == "" {
		return nil, domain.NewValidationError("payment has not been initiated")
	}
	return m.applyVerification(ctx, p)
}

// applyVerification maps the provider's reported status onto local state.
// The status writes are compare-and-set; when a concurrent verification wins
// the race this call converges on the stored state without re-running side
// effects, so the confirmation notification fires exactly once.
func (m *BookingLifecycle) applyVerification(ctx context.Context, p *paymentDomain.Payment) (*VerificationResult, error) {
	b, err := m.bookings.FindByID(ctx, p.BookingID())
	if err != nil {
		return nil, err
	}

	// Terminal payments are reconciled already; repeated callbacks are a
	// no-op and never reach the gateway.
	if p.IsTerminal() {
		return &VerificationResult{
			PaymentStatus: string(p.Status()),
			BookingStatus: string(b.Status()),
		}, nil
	}

	result, err := m.gateway.Verify(ctx, p.Reference())
	if err != nil {
		return nil, upstreamError(err)
	}

	switch result.Status {
	case gateway.VerifySuccess:
		return m.settleSuccess(ctx, b, p, result.TransactionID)

	case gateway.VerifyFailed:
		if err := p.Fail(); err != nil {
			return nil, err
		}
		p.IncrementVersion()
		if err := m.payments.Update(ctx, p); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return m.reloadStatuses(ctx, p.ID())
			}
			return nil, err
		}
		m.logger.Info("payment failed",
			zap.String("payment_id", p.ID().String()),
			zap.String("reference", p.Reference()),
		)
		return &VerificationResult{
			PaymentStatus: string(p.Status()),
			BookingStatus: string(b.Status()),
		}, nil

	default:
		// Provider still reports pending; nothing to reconcile yet.
		return &VerificationResult{
			PaymentStatus: string(p.Status()),
			BookingStatus: string(b.Status()),
		}, nil
	}
}

// settleSuccess completes the payment, confirms the booking and dispatches
// the confirmation. The notification is sent only by the caller whose
// payment compare-and-set succeeded.
func (m *BookingLifecycle) settleSuccess(ctx context.Context, b *bookingDomain.Booking, p *paymentDomain.Payment, transactionID string) (*VerificationResult, error) {
	if err := p.Complete(transactionID); err != nil {
		return nil, err
	}
	p.IncrementVersion()
	if err := m.payments.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return m.reloadStatuses(ctx, p.ID())
		}
		return nil, err
	}

	if b.Status() == bookingDomain.StatusPending {
		if err := b.Confirm(); err != nil {
			return nil, err
		}
		b.IncrementVersion()
		if err := m.bookings.Update(ctx, b); err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
	}

	m.logger.Info("payment completed, booking confirmed",
		zap.String("booking_id", b.ID().String()),
		zap.String("payment_id", p.ID().String()),
	)

	event := events.BookingConfirmedEvent{
		BookingID:      b.ID(),
		PaymentID:      p.ID(),
		GuestEmail:     b.GuestEmail(),
		GuestFirstName: b.GuestFirstName(),
		GuestLastName:  b.GuestLastName(),
		CheckIn:        b.CheckIn(),
		CheckOut:       b.CheckOut(),
		AmountCents:    p.AmountCents(),
		Currency:       p.Currency(),
		OccurredAt:     time.Now().UTC(),
	}
	if l, err := m.listings.FindByID(ctx, b.ListingID()); err == nil {
		event.ListingTitle = l.Title()
	}
	m.notifier.BookingConfirmed(ctx, event)

	return &VerificationResult{
		PaymentStatus: string(p.Status()),
		BookingStatus: string(b.Status()),
	}, nil
}

// reloadStatuses reports the stored state after losing a verification race.
func (m *BookingLifecycle) reloadStatuses(ctx context.Context, paymentID uuid.UUID) (*VerificationResult, error) {
	p, err := m.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	b, err := m.bookings.FindByID(ctx, p.BookingID())
	if err != nil {
		return nil, err
	}
	return &VerificationResult{
		PaymentStatus: string(p.Status()),
		BookingStatus: string(b.Status()),
	}, nil
}

// transactionRef derives the deterministic idempotency token sent to the
// provider at initiation time.
func transactionRef(bookingID, guestID uuid.UUID) string {
	return fmt.Sprintf("booking_%s_%s", bookingID, guestID)
}

// upstreamError converts a gateway client error into the domain taxonomy,
// preserving the raw provider details.
func upstreamError(err error) error {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return domain.NewUpstreamError(gwErr.Error(), gwErr.Body)
	}
	return domain.NewUpstreamError("payment gateway request failed", err.Error())
}
