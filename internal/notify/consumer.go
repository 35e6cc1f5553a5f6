package notify

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/events"
)

// NotificationConsumer listens to notification events and delivers them
// through the configured Mailer.
type NotificationConsumer struct {
	consumer *events.Consumer
	mailer   Mailer
	logger   *zap.Logger
}

// NewNotificationConsumer creates a consumer for notification events.
func NewNotificationConsumer(brokers []string, groupID string, mailer Mailer, logger *zap.Logger) *NotificationConsumer {
	consumer := events.NewConsumer(brokers, groupID, events.TopicNotificationEvents, logger)
	return &NotificationConsumer{
		consumer: consumer,
		mailer:   mailer,
		logger:   logger,
	}
}

// Start begins consuming notification events. It blocks until the context is
// cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming messages to the mailer.
func (c *NotificationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := events.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from notification topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	switch {
	case strings.EqualFold(ce.Type, events.NotificationBookingConfirmed):
		var event events.BookingConfirmedEvent
		if err := ce.ParseData(&event); err != nil {
			c.logger.Error("failed to parse BookingConfirmedEvent data", zap.Error(err))
			return err
		}
		return c.mailer.SendBookingConfirmation(ctx, event)

	default:
		c.logger.Debug("ignoring unhandled notification event type",
			zap.String("type", ce.Type),
		)
		return nil
	}
}

// Close closes the underlying consumer.
func (c *NotificationConsumer) Close() error {
	return c.consumer.Close()
}
