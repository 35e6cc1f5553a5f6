package listing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/service-booking/internal/domain"
)

// PropertyType represents the kind of property being listed.
type PropertyType string

const (
	PropertyHouse     PropertyType = "house"
	PropertyApartment PropertyType = "apartment"
	PropertyVilla     PropertyType = "villa"
	PropertyCondo     PropertyType = "condo"
)

// Listing is the aggregate root for a rentable property.
type Listing struct {
	id           uuid.UUID
	title        string
	description  string
	address      string
	city         string
	state        string
	zipcode      string
	priceCents   int64
	bedrooms     int
	bathrooms    float64
	guests       int
	propertyType PropertyType
	ownerID      uuid.UUID
	isAvailable  bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewListing creates a new Listing owned by ownerID. The owner is immutable
// after creation.
func NewListing(ownerID uuid.UUID, title, description, address, city, state, zipcode string, priceCents int64, bedrooms int, bathrooms float64, guests int, propertyType PropertyType) (*Listing, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if priceCents < 0 {
		return nil, domain.NewValidationError("price must not be negative")
	}
	if guests <= 0 {
		return nil, domain.NewValidationError("guest capacity must be positive")
	}
	if !validPropertyType(propertyType) {
		return nil, domain.NewValidationError("invalid property type: " + string(propertyType))
	}

	now := time.Now().UTC()
	return &Listing{
		id:           uuid.New(),
		title:        title,
		description:  description,
		address:      address,
		city:         city,
		state:        state,
		zipcode:      zipcode,
		priceCents:   priceCents,
		bedrooms:     bedrooms,
		bathrooms:    bathrooms,
		guests:       guests,
		propertyType: propertyType,
		ownerID:      ownerID,
		isAvailable:  true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstitute rebuilds a Listing from persisted data.
func Reconstitute(id uuid.UUID, title, description, address, city, state, zipcode string, priceCents int64, bedrooms int, bathrooms float64, guests int, propertyType PropertyType, ownerID uuid.UUID, isAvailable bool, createdAt, updatedAt time.Time) *Listing {
	return &Listing{
		id: id, title: title, description: description,
		address: address, city: city, state: state, zipcode: zipcode,
		priceCents: priceCents, bedrooms: bedrooms, bathrooms: bathrooms, guests: guests,
		propertyType: propertyType, ownerID: ownerID, isAvailable: isAvailable,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

func validPropertyType(t PropertyType) bool {
	switch t {
	case PropertyHouse, PropertyApartment, PropertyVilla, PropertyCondo:
		return true
	}
	return false
}

// UpdateDetails replaces the mutable descriptive fields.
func (l *Listing) UpdateDetails(title, description, address, city, state, zipcode string, priceCents int64, bedrooms int, bathrooms float64, guests int, propertyType PropertyType) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.NewValidationError("title is required")
	}
	if priceCents < 0 {
		return domain.NewValidationError("price must not be negative")
	}
	if guests <= 0 {
		return domain.NewValidationError("guest capacity must be positive")
	}
	if !validPropertyType(propertyType) {
		return domain.NewValidationError("invalid property type: " + string(propertyType))
	}

	l.title = title
	l.description = description
	l.address = address
	l.city = city
	l.state = state
	l.zipcode = zipcode
	l.priceCents = priceCents
	l.bedrooms = bedrooms
	l.bathrooms = bathrooms
	l.guests = guests
	l.propertyType = propertyType
	l.updatedAt = time.Now().UTC()
	return nil
}

// SetAvailability toggles whether the listing accepts new bookings.
func (l *Listing) SetAvailability(available bool) {
	l.isAvailable = available
	l.updatedAt = time.Now().UTC()
}

// IsOwnedBy reports whether userID owns the listing.
func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return l.ownerID == userID
}

// Getters.
func (l *Listing) ID() uuid.UUID              { return l.id }
func (l *Listing) Title() string              { return l.title }
func (l *Listing) Description() string        { return l.description }
func (l *Listing) Address() string            { return l.address }
func (l *Listing) City() string               { return l.city }
func (l *Listing) State() string              { return l.state }
func (l *Listing) Zipcode() string            { return l.zipcode }
func (l *Listing) PriceCents() int64          { return l.priceCents }
func (l *Listing) Bedrooms() int              { return l.bedrooms }
func (l *Listing) Bathrooms() float64         { return l.bathrooms }
func (l *Listing) Guests() int                { return l.guests }
func (l *Listing) PropertyType() PropertyType { return l.propertyType }
func (l *Listing) OwnerID() uuid.UUID         { return l.ownerID }
func (l *Listing) IsAvailable() bool          { return l.isAvailable }
func (l *Listing) CreatedAt() time.Time       { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time       { return l.updatedAt }
