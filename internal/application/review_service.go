package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	reviewDomain "github.com/stayloop/service-booking/internal/domain/review"
)

// CreateReviewRequest is the DTO for reviewing a completed stay.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ReviewDTO is the API response DTO for review data.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	ListingID uuid.UUID `json:"listing_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewService handles reviews of completed stays.
type ReviewService struct {
	reviews  reviewDomain.ReviewRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews reviewDomain.ReviewRepository, bookings bookingDomain.BookingRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, bookings: bookings, logger: logger}
}

// CreateReview records a review for a completed booking. Only the guest who
// stayed may review, and a booking carries at most one review.
func (s *ReviewService) CreateReview(ctx context.Context, bookingID, authorID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID() != authorID {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}
	if b.Status() != bookingDomain.StatusCompleted {
		return nil, domain.NewInvalidStateError(string(b.Status()), "reviewed")
	}

	if _, err := s.reviews.FindByBookingID(ctx, bookingID); err == nil {
		return nil, domain.NewConflictError("booking already has a review")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	r, err := reviewDomain.NewReview(bookingID, b.ListingID(), authorID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		zap.String("review_id", r.ID().String()),
		zap.String("booking_id", bookingID.String()),
		zap.Int("rating", req.Rating))

	dto := toReviewDTO(r)
	return &dto, nil
}

// ListReviewsForListing returns every review left on a listing.
func (s *ReviewService) ListReviewsForListing(ctx context.Context, listingID uuid.UUID) ([]ReviewDTO, error) {
	reviews, err := s.reviews.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
	}
	return dtos, nil
}

func toReviewDTO(r *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID(),
		BookingID: r.BookingID(),
		ListingID: r.ListingID(),
		AuthorID:  r.AuthorID(),
		Rating:    r.Rating(),
		Comment:   r.Comment(),
		CreatedAt: r.CreatedAt(),
	}
}
