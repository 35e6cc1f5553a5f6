package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/lifecycle"
)

const dateLayout = "2006-01-02"

// CreateBookingRequest is the DTO for creating a booking.
type CreateBookingRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	CheckIn   string    `json:"check_in" binding:"required"`
	CheckOut  string    `json:"check_out" binding:"required"`
}

// RescheduleBookingRequest is the DTO for moving a pending booking's dates.
type RescheduleBookingRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
}

// BookingDTO is the API response DTO for booking data.
type BookingDTO struct {
	ID         uuid.UUID  `json:"id"`
	ListingID  uuid.UUID  `json:"listing_id"`
	GuestID    uuid.UUID  `json:"guest_id"`
	CheckIn    string     `json:"check_in"`
	CheckOut   string     `json:"check_out"`
	Nights     int        `json:"nights"`
	TotalCents int64      `json:"total_cents"`
	Status     string     `json:"status"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// BookingService orchestrates booking use cases on top of the lifecycle
// manager.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	lifecycle *lifecycle.BookingLifecycle
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(repo bookingDomain.BookingRepository, lc *lifecycle.BookingLifecycle, logger *zap.Logger) *BookingService {
	return &BookingService{repo: repo, lifecycle: lc, logger: logger}
}

// CreateBooking creates a pending booking and its companion payment.
func (s *BookingService) CreateBooking(ctx context.Context, guest lifecycle.GuestDetails, req CreateBookingRequest) (*BookingDTO, error) {
	checkIn, checkOut, err := parseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	b, _, err := s.lifecycle.CreateBooking(ctx, req.ListingID, guest, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// GetBooking retrieves a booking visible to the caller. Staff see every
// booking; guests only their own.
func (s *BookingService) GetBooking(ctx context.Context, id, userID uuid.UUID, isStaff bool) (*BookingDTO, error) {
	b, err := s.findVisible(ctx, id, userID, isStaff)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// ListBookings returns the caller's bookings.
func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.repo.ListByGuest(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListBookingsForListing returns all bookings for a listing.
func (s *BookingService) ListBookingsForListing(ctx context.Context, listingID uuid.UUID) ([]BookingDTO, error) {
	bookings, err := s.repo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// ListAllBookings returns a paginated list of every booking (staff).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// Reschedule moves a pending booking's date range.
func (s *BookingService) Reschedule(ctx context.Context, id, userID uuid.UUID, isStaff bool, req RescheduleBookingRequest) (*BookingDTO, error) {
	if _, err := s.findVisible(ctx, id, userID, isStaff); err != nil {
		return nil, err
	}
	checkIn, checkOut, err := parseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	b, err := s.lifecycle.Reschedule(ctx, id, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// DeleteBooking removes a booking that is still pending or was cancelled.
func (s *BookingService) DeleteBooking(ctx context.Context, id, userID uuid.UUID, isStaff bool) error {
	b, err := s.findVisible(ctx, id, userID, isStaff)
	if err != nil {
		return err
	}
	if b.Status() != bookingDomain.StatusPending && b.Status() != bookingDomain.StatusCancelled {
		return domain.NewInvalidStateError(string(b.Status()), "deleted")
	}
	return s.repo.Delete(ctx, id)
}

// Confirm transitions a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, id, userID uuid.UUID, isStaff bool) (*BookingDTO, error) {
	if _, err := s.findVisible(ctx, id, userID, isStaff); err != nil {
		return nil, err
	}
	b, err := s.lifecycle.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// Cancel transitions a booking to cancelled.
func (s *BookingService) Cancel(ctx context.Context, id, userID uuid.UUID, isStaff bool) (*BookingDTO, error) {
	if _, err := s.findVisible(ctx, id, userID, isStaff); err != nil {
		return nil, err
	}
	b, err := s.lifecycle.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// Complete transitions a confirmed booking to completed (staff).
func (s *BookingService) Complete(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	b, err := s.lifecycle.Complete(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toBookingDTO(b)
	return &dto, nil
}

// findVisible loads a booking and enforces user scoping.
func (s *BookingService) findVisible(ctx context.Context, id, userID uuid.UUID, isStaff bool) (*bookingDomain.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && b.GuestID() != userID {
		// Hidden, not forbidden: don't leak the existence of others' bookings.
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return b, nil
}

func parseDateRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("check_in must be a YYYY-MM-DD date")
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("check_out must be a YYYY-MM-DD date")
	}
	return in, out, nil
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	return dtos
}

// toBookingDTO maps a domain Booking to a BookingDTO.
func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:         b.ID(),
		ListingID:  b.ListingID(),
		GuestID:    b.GuestID(),
		CheckIn:    b.CheckIn().Format(dateLayout),
		CheckOut:   b.CheckOut().Format(dateLayout),
		Nights:     b.Nights(),
		TotalCents: b.TotalCents(),
		Status:     string(b.Status()),
		PaymentID:  b.PaymentID(),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}
