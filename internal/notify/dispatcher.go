package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/events"
)

// Dispatcher publishes booking confirmation notifications. Dispatch is
// best-effort: every failure is logged and swallowed so a notification
// problem can never roll back the status transition that triggered it.
type Dispatcher struct {
	producer *events.Producer
	source   string
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher publishing on behalf of source.
func NewDispatcher(producer *events.Producer, source string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{producer: producer, source: source, logger: logger}
}

// BookingConfirmed publishes a BookingConfirmedEvent.
func (d *Dispatcher) BookingConfirmed(ctx context.Context, event events.BookingConfirmedEvent) {
	ce, err := events.NewCloudEvent(d.source, events.NotificationBookingConfirmed, event)
	if err != nil {
		d.logger.Error("failed to create booking confirmed event",
			zap.String("booking_id", event.BookingID.String()),
			zap.Error(err),
		)
		return
	}

	if err := d.producer.PublishEvent(ctx, events.TopicNotificationEvents, ce); err != nil {
		d.logger.Error("failed to publish booking confirmed event",
			zap.String("booking_id", event.BookingID.String()),
			zap.Error(err),
		)
		return
	}

	d.logger.Info("booking confirmation dispatched",
		zap.String("booking_id", event.BookingID.String()),
		zap.String("guest_email", event.GuestEmail),
	)
}
