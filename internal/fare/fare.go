// Package fare computes booking totals and derives flight statuses.
//
// Everything here is pure: no I/O, no clock reads. Callers pass the
// current time explicitly.
package fare

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidArgument reports caller input the calculator refuses to work with.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState reports a corrupt flight record (arrival before departure).
	ErrInvalidState = errors.New("invalid state")
)

const (
	MinPassengers = 1
	MaxPassengers = 9

	// MaxBasePrice keeps the integer steps of Calculate from overflowing.
	MaxBasePrice = math.MaxInt64 / (MaxPassengers * 2)
)

type TripType string

const (
	OneWay    TripType = "one_way"
	RoundTrip TripType = "round_trip"
)

type FareClass string

const (
	Economy  FareClass = "economy"
	Business FareClass = "business"
)

// businessMultiplier is exactly 1.5.
var businessMultiplier = decimal.New(15, -1)

func ParseTripType(s string) (TripType, error) {
	switch t := TripType(s); t {
	case OneWay, RoundTrip:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown trip type %q", ErrInvalidArgument, s)
}

func ParseFareClass(s string) (FareClass, error) {
	switch c := FareClass(s); c {
	case Economy, Business:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown fare class %q", ErrInvalidArgument, s)
}

// Request is what the booking form collects.
type Request struct {
	PassengerCount int       `json:"passenger_count"`
	TripType       TripType  `json:"trip_type"`
	FareClass      FareClass `json:"fare_class"`
}

func (r Request) Validate() error {
	if r.PassengerCount < MinPassengers || r.PassengerCount > MaxPassengers {
		return fmt.Errorf("%w: passenger count %d out of range [%d, %d]", ErrInvalidArgument, r.PassengerCount, MinPassengers, MaxPassengers)
	}
	if _, err := ParseTripType(string(r.TripType)); err != nil {
		return err
	}
	if _, err := ParseFareClass(string(r.FareClass)); err != nil {
		return err
	}
	return nil
}

// Breakdown is derived on demand and never stored on its own.
// Amounts are in the flight's minor currency units.
type Breakdown struct {
	UnitPrice          int64           `json:"unit_price"`
	PassengerCount     int             `json:"passenger_count"`
	Subtotal           int64           `json:"subtotal"`
	TripMultiplier     int64           `json:"trip_multiplier"`
	ClassSurchargeRate decimal.Decimal `json:"class_surcharge_rate"`
	Total              decimal.Decimal `json:"total"`
}

// Calculate returns the total for basePrice under req.
//
// Round-trip doubling happens before the business surcharge. The total is
// exact and unrounded; an odd one-way business subtotal yields a half unit.
func Calculate(basePrice int64, req Request) (Breakdown, error) {
	if basePrice < 0 {
		return Breakdown{}, fmt.Errorf("%w: negative base price %d", ErrInvalidArgument, basePrice)
	}
	if basePrice > MaxBasePrice {
		return Breakdown{}, fmt.Errorf("%w: base price %d too large", ErrInvalidArgument, basePrice)
	}
	if err := req.Validate(); err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		UnitPrice:          basePrice,
		PassengerCount:     req.PassengerCount,
		Subtotal:           basePrice * int64(req.PassengerCount),
		TripMultiplier:     1,
		ClassSurchargeRate: decimal.Zero,
	}

	amount := b.Subtotal
	if req.TripType == RoundTrip {
		b.TripMultiplier = 2
		amount *= 2
	}

	total := decimal.NewFromInt(amount)
	if req.FareClass == Business {
		b.ClassSurchargeRate = decimal.New(5, -1)
		total = total.Mul(businessMultiplier)
	}
	b.Total = total
	return b, nil
}
