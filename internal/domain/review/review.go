package review

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/service-booking/internal/domain"
)

// Review is feedback on a completed booking, one per booking.
type Review struct {
	id        uuid.UUID
	bookingID uuid.UUID
	listingID uuid.UUID
	authorID  uuid.UUID
	rating    int
	comment   string
	createdAt time.Time
	updatedAt time.Time
}

// NewReview creates a review. Rating must be between 1 and 5.
func NewReview(bookingID, listingID, authorID uuid.UUID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)

	now := time.Now().UTC()
	return &Review{
		id:        uuid.New(),
		bookingID: bookingID,
		listingID: listingID,
		authorID:  authorID,
		rating:    rating,
		comment:   comment,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstitute rebuilds a Review from persistence.
func Reconstitute(id, bookingID, listingID, authorID uuid.UUID, rating int, comment string, createdAt, updatedAt time.Time) *Review {
	return &Review{
		id: id, bookingID: bookingID, listingID: listingID, authorID: authorID,
		rating: rating, comment: comment, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Getters.
func (r *Review) ID() uuid.UUID        { return r.id }
func (r *Review) BookingID() uuid.UUID { return r.bookingID }
func (r *Review) ListingID() uuid.UUID { return r.listingID }
func (r *Review) AuthorID() uuid.UUID  { return r.authorID }
func (r *Review) Rating() int          { return r.rating }
func (r *Review) Comment() string      { return r.comment }
func (r *Review) CreatedAt() time.Time { return r.createdAt }
func (r *Review) UpdatedAt() time.Time { return r.updatedAt }
