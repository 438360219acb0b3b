package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kwairways/backend/internal/kafka"
)

// Sender renders booking notifications. Delivery is stubbed to the log until
// an SMTP relay is provisioned.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	var subject string
	switch event.Type {
	case kafka.EventBookingConfirmed:
		subject = fmt.Sprintf("Booking %s confirmed", event.Reference)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking %s cancelled, refund on its way", event.Reference)
	default:
		subject = fmt.Sprintf("Update on booking %s", event.Reference)
	}

	slog.Info("sending email",
		"to", event.ContactEmail,
		"subject", subject,
		"booking", event.Reference,
		"passengers", event.PassengerCount,
	)
	return nil
}
