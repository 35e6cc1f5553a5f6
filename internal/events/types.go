package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicNotificationEvents = "notification.events"
)

// Event types.
const (
	NotificationBookingConfirmed = "notification.booking.confirmed"
)

// BookingConfirmedEvent is published when a booking transitions to confirmed
// after its payment settles. The mailer consumer turns it into a guest
// confirmation message.
type BookingConfirmedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	PaymentID      uuid.UUID `json:"payment_id"`
	ListingTitle   string    `json:"listing_title"`
	GuestEmail     string    `json:"guest_email"`
	GuestFirstName string    `json:"guest_first_name"`
	GuestLastName  string    `json:"guest_last_name"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	AmountCents    int64     `json:"amount_cents"`
	Currency       string    `json:"currency"`
	OccurredAt     time.Time `json:"occurred_at"`
}
