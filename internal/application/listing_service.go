package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
)

// CreateListingRequest is the DTO for creating a listing.
type CreateListingRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	Address      string  `json:"address" binding:"required"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required"`
	Zipcode      string  `json:"zipcode" binding:"required"`
	PriceCents   int64   `json:"price_cents" binding:"required,gte=0"`
	Bedrooms     int     `json:"bedrooms" binding:"gte=0"`
	Bathrooms    float64 `json:"bathrooms" binding:"gte=0"`
	Guests       int     `json:"guests" binding:"required,gt=0"`
	PropertyType string  `json:"property_type" binding:"required"`
}

// UpdateListingRequest is the DTO for partially updating a listing. Absent
// fields keep their current values.
type UpdateListingRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	Zipcode      *string  `json:"zipcode"`
	PriceCents   *int64   `json:"price_cents" binding:"omitempty,gte=0"`
	Bedrooms     *int     `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms    *float64 `json:"bathrooms" binding:"omitempty,gte=0"`
	Guests       *int     `json:"guests" binding:"omitempty,gt=0"`
	PropertyType *string  `json:"property_type"`
	IsAvailable  *bool    `json:"is_available"`
}

// ListingDTO is the API response DTO for listing data.
type ListingDTO struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zipcode      string    `json:"zipcode"`
	PriceCents   int64     `json:"price_cents"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    float64   `json:"bathrooms"`
	Guests       int       `json:"guests"`
	PropertyType string    `json:"property_type"`
	OwnerID      uuid.UUID `json:"owner_id"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListingService orchestrates listing use cases.
type ListingService struct {
	repo   listingDomain.ListingRepository
	logger *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(repo listingDomain.ListingRepository, logger *zap.Logger) *ListingService {
	return &ListingService{repo: repo, logger: logger}
}

// CreateListing creates a listing owned by ownerID.
func (s *ListingService) CreateListing(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*ListingDTO, error) {
	l, err := listingDomain.NewListing(ownerID, req.Title, req.Description, req.Address, req.City, req.State, req.Zipcode, req.PriceCents, req.Bedrooms, req.Bathrooms, req.Guests, listingDomain.PropertyType(req.PropertyType))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("listing created",
		zap.String("listing_id", l.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)

	dto := toListingDTO(l)
	return &dto, nil
}

// GetListing retrieves a listing by ID.
func (s *ListingService) GetListing(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toListingDTO(l)
	return &dto, nil
}

// ListListings returns listings matching the filter.
func (s *ListingService) ListListings(ctx context.Context, filter listingDomain.ListFilter, page, limit int) ([]ListingDTO, int64, error) {
	listings, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	return dtos, total, nil
}

// UpdateListing applies the present fields of the request to a listing.
// Only the owner may update; ownership itself is immutable.
func (s *ListingService) UpdateListing(ctx context.Context, id, userID uuid.UUID, isStaff bool, req UpdateListingRequest) (*ListingDTO, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && !l.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("only the owner may update a listing")
	}

	title := valueOr(req.Title, l.Title())
	description := valueOr(req.Description, l.Description())
	address := valueOr(req.Address, l.Address())
	city := valueOr(req.City, l.City())
	state := valueOr(req.State, l.State())
	zipcode := valueOr(req.Zipcode, l.Zipcode())
	priceCents := valueOr(req.PriceCents, l.PriceCents())
	bedrooms := valueOr(req.Bedrooms, l.Bedrooms())
	bathrooms := valueOr(req.Bathrooms, l.Bathrooms())
	guests := valueOr(req.Guests, l.Guests())
	propertyType := l.PropertyType()
	if req.PropertyType != nil {
		propertyType = listingDomain.PropertyType(*req.PropertyType)
	}

	if err := l.UpdateDetails(title, description, address, city, state, zipcode, priceCents, bedrooms, bathrooms, guests, propertyType); err != nil {
		return nil, err
	}
	if req.IsAvailable != nil {
		l.SetAvailability(*req.IsAvailable)
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	dto := toListingDTO(l)
	return &dto, nil
}

// DeleteListing removes a listing owned by userID.
func (s *ListingService) DeleteListing(ctx context.Context, id, userID uuid.UUID, isStaff bool) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !isStaff && !l.IsOwnedBy(userID) {
		return domain.NewForbiddenError("only the owner may delete a listing")
	}
	return s.repo.Delete(ctx, id)
}

func valueOr[T any](v *T, current T) T {
	if v != nil {
		return *v
	}
	return current
}

// toListingDTO maps a domain Listing to a ListingDTO.
func toListingDTO(l *listingDomain.Listing) ListingDTO {
	return ListingDTO{
		ID:           l.ID(),
		Title:        l.Title(),
		Description:  l.Description(),
		Address:      l.Address(),
		City:         l.City(),
		State:        l.State(),
		Zipcode:      l.Zipcode(),
		PriceCents:   l.PriceCents(),
		Bedrooms:     l.Bedrooms(),
		Bathrooms:    l.Bathrooms(),
		Guests:       l.Guests(),
		PropertyType: string(l.PropertyType()),
		OwnerID:      l.OwnerID(),
		IsAvailable:  l.IsAvailable(),
		CreatedAt:    l.CreatedAt(),
		UpdatedAt:    l.UpdatedAt(),
	}
}
