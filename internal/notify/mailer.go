package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/events"
)

// Mailer delivers a confirmation message to a guest.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, event events.BookingConfirmedEvent) error
}

// MockMailer is a development/testing implementation of Mailer that logs
// instead of sending.
type MockMailer struct {
	logger *zap.Logger
}

// NewMockMailer creates a mock mailer.
func NewMockMailer(logger *zap.Logger) *MockMailer {
	return &MockMailer{logger: logger}
}

// SendBookingConfirmation logs the message that would have been sent.
func (m *MockMailer) SendBookingConfirmation(ctx context.Context, event events.BookingConfirmedEvent) error {
	m.logger.Info("[MOCK EMAIL] booking confirmation sent",
		zap.String("to", event.GuestEmail),
		zap.String("booking_id", event.BookingID.String()),
		zap.String("subject", fmt.Sprintf("Your booking at %s is confirmed", event.ListingTitle)),
	)
	return nil
}
