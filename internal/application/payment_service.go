package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/domain"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	paymentDomain "github.com/stayloop/service-booking/internal/domain/payment"
	"github.com/stayloop/service-booking/internal/lifecycle"
)

// PaymentDTO is the API response DTO for payment data.
type PaymentDTO struct {
	ID            uuid.UUID `json:"id"`
	BookingID     uuid.UUID `json:"booking_id"`
	GuestID       uuid.UUID `json:"guest_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	CheckoutURL   string    `json:"checkout_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InitiatePaymentResponse carries the checkout session handed back to the
// client after initiating a payment.
type InitiatePaymentResponse struct {
	PaymentURL string    `json:"payment_url"`
	PaymentID  uuid.UUID `json:"payment_id"`
	Reference  string    `json:"reference"`
}

// VerificationDTO reports the outcome of a gateway verification.
type VerificationDTO struct {
	PaymentStatus string `json:"payment_status"`
	BookingStatus string `json:"booking_status"`
}

// PaymentStatsDTO aggregates revenue figures for staff dashboards.
type PaymentStatsDTO struct {
	TotalRevenueCents int64            `json:"total_revenue_cents"`
	CountByStatus     map[string]int64 `json:"count_by_status"`
}

// EnsurePaymentRequest is the DTO for the idempotent payment-creation
// endpoint.
type EnsurePaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

// PaymentService orchestrates payment use cases on top of the lifecycle
// manager.
type PaymentService struct {
	repo      paymentDomain.PaymentRepository
	bookings  bookingDomain.BookingRepository
	lifecycle *lifecycle.BookingLifecycle
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(repo paymentDomain.PaymentRepository, bookings bookingDomain.BookingRepository, lc *lifecycle.BookingLifecycle, logger *zap.Logger) *PaymentService {
	return &PaymentService{repo: repo, bookings: bookings, lifecycle: lc, logger: logger}
}

// EnsurePayment returns the payment for a booking, creating it if the saga
// compensation removed it. Repeated calls return the same payment. Only the
// booking's guest or staff may reach it; anyone else gets a not-found so the
// booking's existence is not revealed.
func (s *PaymentService) EnsurePayment(ctx context.Context, bookingID, userID uuid.UUID, isStaff bool) (*PaymentDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isStaff && b.GuestID() != userID {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	p, err := s.lifecycle.EnsurePayment(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toPaymentDTO(p)
	return &dto, nil
}

// GetPayment retrieves a payment visible to the caller.
func (s *PaymentService) GetPayment(ctx context.Context, id, userID uuid.UUID, isStaff bool) (*PaymentDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && p.GuestID() != userID {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	dto := toPaymentDTO(p)
	return &dto, nil
}

// ListPayments returns the caller's payments.
func (s *PaymentService) ListPayments(ctx context.Context, userID uuid.UUID) ([]PaymentDTO, error) {
	payments, err := s.repo.ListByGuest(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPaymentDTOs(payments), nil
}

// ListAllPayments returns a paginated list of every payment (staff).
func (s *PaymentService) ListAllPayments(ctx context.Context, page, limit int) ([]PaymentDTO, int64, error) {
	payments, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toPaymentDTOs(payments), total, nil
}

// GetPaymentStats aggregates revenue and per-status counts (staff).
func (s *PaymentService) GetPaymentStats(ctx context.Context) (*PaymentStatsDTO, error) {
	revenue, counts, err := s.repo.GetRevenueStats(ctx)
	if err != nil {
		return nil, err
	}
	return &PaymentStatsDTO{TotalRevenueCents: revenue, CountByStatus: counts}, nil
}

// InitiatePayment opens (or replays) a gateway checkout session for a
// booking's payment.
func (s *PaymentService) InitiatePayment(ctx context.Context, bookingID uuid.UUID) (*InitiatePaymentResponse, error) {
	result, err := s.lifecycle.InitiatePayment(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &InitiatePaymentResponse{
		PaymentURL: result.PaymentURL,
		PaymentID:  result.PaymentID,
		Reference:  result.Reference,
	}, nil
}

// HandleVerification settles a payment from a gateway callback or return
// redirect, identified by its transaction reference.
func (s *PaymentService) HandleVerification(ctx context.Context, reference string) (*VerificationDTO, error) {
	if reference == "" {
		return nil, domain.NewValidationError("reference is required")
	}
	result, err := s.lifecycle.HandleVerification(ctx, reference)
	if err != nil {
		return nil, err
	}
	return toVerificationDTO(result), nil
}

// CheckStatus re-verifies a payment by ID on behalf of its owner.
func (s *PaymentService) CheckStatus(ctx context.Context, id, userID uuid.UUID, isStaff bool) (*VerificationDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && p.GuestID() != userID {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	result, err := s.lifecycle.CheckStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVerificationDTO(result), nil
}

func toVerificationDTO(r *lifecycle.VerificationResult) *VerificationDTO {
	return &VerificationDTO{
		PaymentStatus: r.PaymentStatus,
		BookingStatus: r.BookingStatus,
	}
}

func toPaymentDTOs(payments []*paymentDomain.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos
}

// toPaymentDTO maps a domain Payment to a PaymentDTO.
func toPaymentDTO(p *paymentDomain.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            p.ID(),
		BookingID:     p.BookingID(),
		GuestID:       p.GuestID(),
		AmountCents:   p.AmountCents(),
		Currency:      p.Currency(),
		Status:        string(p.Status()),
		TransactionID: p.TransactionID(),
		Reference:     p.Reference(),
		CheckoutURL:   p.CheckoutURL(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}
