package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender turns notification events into messages. Delivery itself is a
// log sink; a real SMTP/SMS gateway plugs in through WithDeliver.
type Sender struct {
	deliver func(ctx context.Context, msg Message) error
}

func NewSender() *Sender {
	return &Sender{deliver: logDelivery}
}

func WithDeliver(deliver func(ctx context.Context, msg Message) error) *Sender {
	return &Sender{deliver: deliver}
}

func logDelivery(_ context.Context, msg Message) error {
	log.WithFields(log.Fields{"to": msg.To, "subject": msg.Subject}).Info("email sent")
	return nil
}

// Handle decodes a raw notification payload and sends the matching message.
// Unknown event types are ignored; undecodable payloads return kafka.ErrSkip.
func (s *Sender) Handle(ctx context.Context, payload []byte) error {
	typ, err := kafka.EventType(payload)
	if err != nil {
		return fmt.Errorf("%w: decode event: %v", kafka.ErrSkip, err)
	}

	var msg Message
	switch typ {
	case kafka.EventBookingCreated, kafka.EventBookingConfirmed, kafka.EventBookingCancelled, kafka.EventBookingExpired:
		var event kafka.BookingEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("%w: decode booking event: %v", kafka.ErrSkip, err)
		}
		msg = BookingMessage(event)
	case kafka.EventPasswordResetRequested:
		var event kafka.AccountEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("%w: decode account event: %v", kafka.ErrSkip, err)
		}
		msg = PasswordResetMessage(event)
	default:
		log.WithField("type", typ).Debug("ignoring notification")
		return nil
	}

	if msg.To == "" {
		return nil
	}
	return s.deliver(ctx, msg)
}

func BookingMessage(e kafka.BookingEvent) Message {
	var subject, lead string
	switch e.Type {
	case kafka.EventBookingCreated:
		subject = "Booking received"
		lead = fmt.Sprintf("Your booking is on hold until %s. Complete payment to confirm it.", e.ExpiresAt.Format("02 Jan 2006 15:04 MST"))
	case kafka.EventBookingConfirmed:
		subject = "Booking confirmed"
		lead = "Your payment was received. Your e-ticket is ready to download."
	case kafka.EventBookingCancelled:
		subject = "Booking cancelled"
		lead = "Your booking has been cancelled."
	case kafka.EventBookingExpired:
		subject = "Booking expired"
		lead = "Your booking expired before payment was completed."
	}

	body := fmt.Sprintf("%s\n\nPNR: %s\nPassengers: %d\nClass: %s\nTrip: %s\nTotal: %s\n",
		lead, e.PNR, e.PassengerCount, e.FareClass, e.TripType, eventTotal(e))
	return Message{To: e.Email, Subject: fmt.Sprintf("%s [%s]", subject, e.PNR), Body: body}
}

// eventTotal renders the minor-unit total carried by the event the same way
// the e-ticket does.
func eventTotal(e kafka.BookingEvent) string {
	amount, err := decimal.NewFromString(e.Total)
	if err != nil {
		log.WithError(err).WithField("pnr", e.PNR).Warn("booking event with unreadable total")
		return e.Total + " " + e.Currency
	}
	return domain.FormatMoney(amount, e.Currency)
}

func PasswordResetMessage(e kafka.AccountEvent) Message {
	body := fmt.Sprintf("Hello %s,\n\nUse this code to reset your password: %s\nIt expires at %s.\n\nIf you did not ask for a reset, ignore this message.\n",
		e.Username, e.ResetToken, e.ExpiresAt.Format("02 Jan 2006 15:04 MST"))
	return Message{To: e.Email, Subject: "Password reset", Body: body}
}
