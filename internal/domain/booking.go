package domain

import (
	"time"

	"github.com/Domenick1991/flightdesk/internal/fare"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type Booking struct {
	ID             int64          `json:"id"`
	PNR            string         `json:"pnr"`
	UserID         int64          `json:"user_id"`
	FlightID       int64          `json:"flight_id"`
	PassengerCount int            `json:"passenger_count"`
	TripType       fare.TripType  `json:"trip_type"`
	FareClass      fare.FareClass `json:"fare_class"`
	// Total is in minor units of Currency, exactly as quoted.
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	Status     BookingStatus   `json:"status"`
	Email      string          `json:"email"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Passengers []Passenger     `json:"passengers"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Passenger struct {
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"date_of_birth"`
}
