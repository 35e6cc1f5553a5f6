package listing

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows listing queries.
type ListFilter struct {
	City          string
	PropertyType  string
	AvailableOnly bool
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Save(ctx context.Context, l *Listing) error
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Listing, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Listing, error)
}
