package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stayloop/service-booking/internal/domain"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
)

// ListingModel is the GORM persistence model for the listings table.
type ListingModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title        string    `gorm:"type:varchar(200);not null"`
	Description  string    `gorm:"type:text"`
	Address      string    `gorm:"type:varchar(200)"`
	City         string    `gorm:"type:varchar(100);index"`
	State        string    `gorm:"type:varchar(100)"`
	Zipcode      string    `gorm:"type:varchar(20)"`
	PriceCents   int64     `gorm:"not null"`
	Bedrooms     int       `gorm:"not null;default:0"`
	Bathrooms    float64   `gorm:"not null;default:0"`
	Guests       int       `gorm:"not null;default:1"`
	PropertyType string    `gorm:"type:varchar(20);not null"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	IsAvailable  bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (ListingModel) TableName() string {
	return "listings"
}

// ListingRepositoryImpl is the GORM-based implementation of ListingRepository.
type ListingRepositoryImpl struct {
	db *gorm.DB
}

// NewListingRepository creates a new GORM-based listing repository.
func NewListingRepository(db *gorm.DB) *ListingRepositoryImpl {
	return &ListingRepositoryImpl{db: db}
}

// Save persists a new listing.
func (r *ListingRepositoryImpl) Save(ctx context.Context, l *listingDomain.Listing) error {
	model := toListingModel(l)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing listing.
func (r *ListingRepositoryImpl) Update(ctx context.Context, l *listingDomain.Listing) error {
	model := toListingModel(l)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a listing.
func (r *ListingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&ListingModel{}, "id = ?", id).Error
}

// FindByID retrieves a listing by its unique ID.
func (r *ListingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	var model ListingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Listing", id.String())
		}
		return nil, err
	}
	return toListingDomain(&model), nil
}

// List retrieves listings matching the filter with pagination.
func (r *ListingRepositoryImpl) List(ctx context.Context, filter listingDomain.ListFilter, page, limit int) ([]*listingDomain.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&ListingModel{})
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.PropertyType != "" {
		query = query.Where("property_type = ?", filter.PropertyType)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}

	var total int64
	query.Count(&total)

	var models []ListingModel
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	listings := make([]*listingDomain.Listing, len(models))
	for i := range models {
		listings[i] = toListingDomain(&models[i])
	}
	return listings, total, nil
}

// ListByOwner retrieves all listings owned by ownerID.
func (r *ListingRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*listingDomain.Listing, error) {
	var models []ListingModel
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	listings := make([]*listingDomain.Listing, len(models))
	for i := range models {
		listings[i] = toListingDomain(&models[i])
	}
	return listings, nil
}

func toListingDomain(m *ListingModel) *listingDomain.Listing {
	return listingDomain.Reconstitute(
		m.ID, m.Title, m.Description, m.Address, m.City, m.State, m.Zipcode,
		m.PriceCents, m.Bedrooms, m.Bathrooms, m.Guests,
		listingDomain.PropertyType(m.PropertyType), m.OwnerID, m.IsAvailable,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toListingModel(l *listingDomain.Listing) *ListingModel {
	return &ListingModel{
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
