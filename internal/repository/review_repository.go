package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stayloop/service-booking/internal/domain"
	reviewDomain "github.com/stayloop/service-booking/internal/domain/review"
)

// ReviewModel is the GORM persistence model for the reviews table.
type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (ReviewModel) TableName() string {
	return "reviews"
}

// ReviewRepositoryImpl is the GORM-based implementation of ReviewRepository.
type ReviewRepositoryImpl struct {
	db *gorm.DB
}

// NewReviewRepository creates a new GORM-based review repository.
func NewReviewRepository(db *gorm.DB) *ReviewRepositoryImpl {
	return &ReviewRepositoryImpl{db: db}
}

// Save persists a new review.
func (r *ReviewRepositoryImpl) Save(ctx context.Context, rv *reviewDomain.Review) error {
	model := toReviewModel(rv)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByBookingID retrieves the review for a booking.
func (r *ReviewRepositoryImpl) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*reviewDomain.Review, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Review", bookingID.String())
		}
		return nil, err
	}
	return toReviewDomain(&model), nil
}

// ListByListing retrieves all reviews for a listing.
func (r *ReviewRepositoryImpl) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*reviewDomain.Review, error) {
	var models []ReviewModel
	if err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	reviews := make([]*reviewDomain.Review, len(models))
	for i := range models {
		reviews[i] = toReviewDomain(&models[i])
	}
	return reviews, nil
}

func toReviewDomain(m *ReviewModel) *reviewDomain.Review {
	return reviewDomain.Reconstitute(
		m.ID, m.BookingID, m.ListingID, m.AuthorID,
		m.Rating, m.Comment, m.CreatedAt, m.UpdatedAt,
	)
}

func toReviewModel(rv *reviewDomain.Review) *ReviewModel {
	return &ReviewModel{
		ID:        rv.ID(),
		BookingID: rv.BookingID(),
		ListingID: rv.ListingID(),
		AuthorID:  rv.AuthorID(),
		Rating:    rv.Rating(),
		Comment:   rv.Comment(),
		CreatedAt: rv.CreatedAt(),
		UpdatedAt: rv.UpdatedAt(),
	}
}
