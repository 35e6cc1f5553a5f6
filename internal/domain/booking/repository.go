package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for Booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListByGuest retrieves all bookings made by a guest.
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*Booking, error)

	// ListByListing retrieves all bookings for a listing.
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (staff).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// Save persists a new booking aggregate.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error

	// Delete removes a booking and its dependent records.
	Delete(ctx context.Context, id uuid.UUID) error
}
