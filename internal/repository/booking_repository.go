package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stayloop/service-booking/internal/domain"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ListingID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	GuestID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	GuestEmail     string     `gorm:"type:varchar(254);not null"`
	GuestFirstName string     `gorm:"type:varchar(150)"`
	GuestLastName  string     `gorm:"type:varchar(150)"`
	CheckIn        time.Time  `gorm:"type:date;not null"`
	CheckOut       time.Time  `gorm:"type:date;not null"`
	TotalCents     int64      `gorm:"not null"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentID      *uuid.UUID `gorm:"type:uuid"`
	Version        int64      `gorm:"not null;default:1"`
	CreatedAt      time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt      time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string {
	return "bookings"
}

// BookingRepositoryImpl is the GORM-based implementation of BookingRepository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByID retrieves a booking by its unique ID.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, err
	}
	return toBookingDomain(&model), nil
}

// ListByGuest retrieves all bookings made by a guest.
func (r *BookingRepositoryImpl) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Where("guest_id = ?", guestID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toBookingDomainSlice(models), nil
}

// ListByListing retrieves all bookings for a listing.
func (r *BookingRepositoryImpl) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("check_in ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toBookingDomainSlice(models), nil
}

// ListAll retrieves all bookings with pagination (staff).
func (r *BookingRepositoryImpl) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total)

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	return toBookingDomainSlice(models), total, nil
}

// Save persists a new booking aggregate.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing booking with optimistic locking.
func (r *BookingRepositoryImpl) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	previousVersion := b.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// Delete removes a booking and its payment in one transaction.
func (r *BookingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&PaymentModel{}, "booking_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&BookingModel{}, "id = ?", id).Error
	})
}

func toBookingDomainSlice(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toBookingDomain(&models[i])
	}
	return bookings
}

func toBookingDomain(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		m.ID, m.ListingID, m.GuestID,
		m.GuestEmail, m.GuestFirstName, m.GuestLastName,
		m.CheckIn, m.CheckOut, m.TotalCents,
		bookingDomain.Status(m.Status), m.PaymentID, m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:             b.ID(),
		ListingID:      b.ListingID(),
		GuestID:        b.GuestID(),
		GuestEmail:     b.GuestEmail(),
		GuestFirstName: b.GuestFirstName(),
		GuestLastName:  b.GuestLastName(),
		CheckIn:        b.CheckIn(),
		CheckOut:       b.CheckOut(),
		TotalCents:     b.TotalCents(),
		Status:         string(b.Status()),
		PaymentID:      b.PaymentID(),
		Version:        b.Version(),
		CreatedAt:      b.CreatedAt(),
		UpdatedAt:      b.UpdatedAt(),
	}
}
