package review

import (
	"context"

	"github.com/google/uuid"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Save(ctx context.Context, r *Review) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Review, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]*Review, error)
}
