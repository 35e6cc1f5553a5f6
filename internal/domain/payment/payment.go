package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/service-booking/internal/domain"
)

// Status represents the state of a payment attempt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// DefaultCurrency is applied when a booking does not specify one.
const DefaultCurrency = "USD"

// Payment is the aggregate root for a single payment attempt, tied 1:1 to a
// booking. It is created pending with no gateway reference; initiation sets
// the checkout URL and reference, verification settles the status.
type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	guestID       uuid.UUID
	amountCents   int64
	currency      string
	status        Status
	transactionID string
	reference     string
	checkoutURL   string
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPayment creates a pending Payment for a booking.
func NewPayment(bookingID, guestID uuid.UUID, amountCents int64, currency string) *Payment {
	if currency == "" {
		currency = DefaultCurrency
	}
	now := time.Now().UTC()
	return &Payment{
		id:          uuid.New(),
		bookingID:   bookingID,
		guestID:     guestID,
		amountCents: amountCents,
		currency:    currency,
		status:      StatusPending,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Reconstitute rebuilds a Payment from persisted data.
func Reconstitute(id, bookingID, guestID uuid.UUID, amountCents int64, currency string, status Status, transactionID, reference, checkoutURL string, version int64, createdAt, updatedAt time.Time) *Payment {
	return &Payment{
		id: id, bookingID: bookingID, guestID: guestID,
		amountCents: amountCents, currency: currency, status: status,
		transactionID: transactionID, reference: reference, checkoutURL: checkoutURL,
		version: version, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID         { return p.id }
func (p *Payment) BookingID() uuid.UUID  { return p.bookingID }
func (p *Payment) GuestID() uuid.UUID    { return p.guestID }
func (p *Payment) AmountCents() int64    { return p.amountCents }
func (p *Payment) Currency() string      { return p.currency }
func (p *Payment) Status() Status        { return p.status }
func (p *Payment) TransactionID() string { return p.transactionID }
func (p *Payment) Reference() string     { return p.reference }
func (p *Payment) CheckoutURL() string   { return p.checkoutURL }
func (p *Payment) Version() int64        { return p.version }
func (p *Payment) CreatedAt() time.Time  { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time  { return p.updatedAt }

// HasCheckoutURL reports whether the gateway has already been asked to
// initiate this payment.
func (p *Payment) HasCheckoutURL() bool {
	return p.checkoutURL != ""
}

// IsTerminal reports whether the payment reached a final status.
func (p *Payment) IsTerminal() bool {
	return p.status == StatusCompleted || p.status == StatusFailed || p.status == StatusCancelled
}

// --- Behavior / State Transitions ---

// MarkInitiated stores the checkout URL and gateway reference obtained from
// a successful initiation. Only a pending, uninitiated payment may be
// initiated.
func (p *Payment) MarkInitiated(checkoutURL, reference string) error {
	if p.status != StatusPending {
		return domain.NewInvalidStateError(string(p.status), "initiated")
	}
	if p.checkoutURL != "" {
		return domain.NewConflictError("payment already initiated")
	}
	p.checkoutURL = checkoutURL
	p.reference = reference
	p.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions from pending to completed after the gateway reports
// success.
func (p *Payment) Complete(transactionID string) error {
	if p.status != StatusPending {
		return domain.NewInvalidStateError(string(p.status), string(StatusCompleted))
	}
	p.status = StatusCompleted
	p.transactionID = transactionID
	p.updatedAt = time.Now().UTC()
	return nil
}

// Fail transitions from pending to failed after the gateway reports failure.
func (p *Payment) Fail() error {
	if p.status != StatusPending {
		return domain.NewInvalidStateError(string(p.status), string(StatusFailed))
	}
	p.status = StatusFailed
	p.updatedAt = time.Now().UTC()
	return nil
}

// Cancel mirrors a booking cancellation. A completed payment is never
// cancelled here; settled funds stay settled.
func (p *Payment) Cancel() error {
	if p.status == StatusCompleted || p.status == StatusCancelled {
		return domain.NewInvalidStateError(string(p.status), string(StatusCancelled))
	}
	p.status = StatusCancelled
	p.updatedAt = time.Now().UTC()
	return nil
}

// SyncAmount updates the amount of a pending, uninitiated payment when the
// booking is rescheduled.
func (p *Payment) SyncAmount(amountCents int64) error {
	if p.status != StatusPending || p.checkoutURL != "" {
		return domain.NewInvalidStateError(string(p.status), "amount update")
	}
	p.amountCents = amountCents
	p.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Payment) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
