package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/service-booking/internal/domain"
)

// Status represents the state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Booking is the aggregate root for a reservation of a listing.
// Guest contact details are captured at creation so payment initiation
// never needs the external user store.
type Booking struct {
	id             uuid.UUID
	listingID      uuid.UUID
	guestID        uuid.UUID
	guestEmail     string
	guestFirstName string
	guestLastName  string
	checkIn        time.Time
	checkOut       time.Time
	totalCents     int64
	status         Status
	paymentID      *uuid.UUID
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewBooking creates a pending Booking. checkOut must be strictly after
// checkIn; the total is nights times the listing's nightly price.
func NewBooking(listingID, guestID uuid.UUID, guestEmail, guestFirstName, guestLastName string, checkIn, checkOut time.Time, nightlyPriceCents int64) (*Booking, error) {
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check_out must be after check_in")
	}
	if guestEmail == "" {
		return nil, domain.NewValidationError("guest email is required")
	}

	nights := nightsBetween(checkIn, checkOut)
	now := time.Now().UTC()
	return &Booking{
		id:             uuid.New(),
		listingID:      listingID,
		guestID:        guestID,
		guestEmail:     guestEmail,
		guestFirstName: guestFirstName,
		guestLastName:  guestLastName,
		checkIn:        checkIn,
		checkOut:       checkOut,
		totalCents:     int64(nights) * nightlyPriceCents,
		status:         StatusPending,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(id, listingID, guestID uuid.UUID, guestEmail, guestFirstName, guestLastName string, checkIn, checkOut time.Time, totalCents int64, status Status, paymentID *uuid.UUID, version int64, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		id: id, listingID: listingID, guestID: guestID,
		guestEmail: guestEmail, guestFirstName: guestFirstName, guestLastName: guestLastName,
		checkIn: checkIn, checkOut: checkOut, totalCents: totalCents,
		status: status, paymentID: paymentID, version: version,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

func nightsBetween(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// --- State transitions ---

// Confirm transitions from pending to confirmed.
func (b *Booking) Confirm() error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions to cancelled from any status except cancelled itself.
// Re-cancelling is reported as an invalid transition, never applied twice.
func (b *Booking) Cancel() error {
	if b.status == StatusCancelled {
		return domain.NewInvalidStateError(string(StatusCancelled), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions from confirmed to completed. Completion is a manual
// operation performed after the stay ends.
func (b *Booking) Complete() error {
	if b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reschedule moves the date range of a pending booking and recomputes the
// total from the listing's nightly price.
func (b *Booking) Reschedule(checkIn, checkOut time.Time, nightlyPriceCents int64) error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), "rescheduled")
	}
	if !checkOut.After(checkIn) {
		return domain.NewValidationError("check_out must be after check_in")
	}
	b.checkIn = checkIn
	b.checkOut = checkOut
	b.totalCents = int64(nightsBetween(checkIn, checkOut)) * nightlyPriceCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// AttachPayment records the companion payment reference.
func (b *Booking) AttachPayment(paymentID uuid.UUID) {
	b.paymentID = &paymentID
	b.updatedAt = time.Now().UTC()
}

// HasPayment reports whether a companion payment exists.
func (b *Booking) HasPayment() bool {
	return b.paymentID != nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// Nights returns the number of nights in the booked range.
func (b *Booking) Nights() int {
	return nightsBetween(b.checkIn, b.checkOut)
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID         { return b.id }
func (b *Booking) ListingID() uuid.UUID  { return b.listingID }
func (b *Booking) GuestID() uuid.UUID    { return b.guestID }
func (b *Booking) GuestEmail() string    { return b.guestEmail }
func (b *Booking) GuestFirstName() string { return b.guestFirstName }
func (b *Booking) GuestLastName() string { return b.guestLastName }
func (b *Booking) CheckIn() time.Time    { return b.checkIn }
func (b *Booking) CheckOut() time.Time   { return b.checkOut }
func (b *Booking) TotalCents() int64     { return b.totalCents }
func (b *Booking) Status() Status        { return b.status }
func (b *Booking) PaymentID() *uuid.UUID { return b.paymentID }
func (b *Booking) Version() int64        { return b.version }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }
