package kafka

import (
	"encoding/json"
	"time"
)

const (
	EventBookingCreated         = "booking_created"
	EventBookingConfirmed       = "booking_confirmed"
	EventBookingCancelled       = "booking_cancelled"
	EventBookingExpired         = "booking_expired"
	EventPasswordResetRequested = "password_reset_requested"
)

// BookingEvent is published on every booking state change.
type BookingEvent struct {
	Type           string    `json:"type"`
	PNR            string    `json:"pnr"`
	FlightID       int64     `json:"flight_id"`
	PassengerCount int       `json:"passenger_count"`
	FareClass      string    `json:"fare_class"`
	TripType       string    `json:"trip_type"`
	Total          string    `json:"total"`
	Currency       string    `json:"currency"`
	Email          string    `json:"email"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type AccountEvent struct {
	Type       string    `json:"type"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	ResetToken string    `json:"reset_token,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// EventType reads only the type field of an encoded event.
func EventType(payload []byte) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", err
	}
	return envelope.Type, nil
}
