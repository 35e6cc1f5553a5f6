package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for Payment aggregates.
type PaymentRepository interface {
	// FindByID retrieves a payment by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByBookingID retrieves the payment tied to a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)

	// FindByReference retrieves a payment by its gateway reference.
	FindByReference(ctx context.Context, reference string) (*Payment, error)

	// ListByGuest retrieves all payments made by a guest.
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*Payment, error)

	// ListAll retrieves all payments with pagination (staff).
	ListAll(ctx context.Context, page, limit int) ([]*Payment, int64, error)

	// GetRevenueStats returns settled revenue and counts by status (staff).
	GetRevenueStats(ctx context.Context) (totalRevenueCents int64, countByStatus map[string]int64, err error)

	// Save persists a new payment aggregate.
	Save(ctx context.Context, p *Payment) error

	// Update persists changes to an existing payment with optimistic locking.
	Update(ctx context.Context, p *Payment) error

	// Delete removes a payment. Used only as saga compensation; a payment is
	// never deleted independently of its booking otherwise.
	Delete(ctx context.Context, id uuid.UUID) error
}
