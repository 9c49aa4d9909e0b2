package fare

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_Scenarios(t *testing.T) {
	testCases := []struct {
		name      string
		basePrice int64
		req       Request
		subtotal  int64
		total     string
	}{
		{
			name:      "round trip business for two",
			basePrice: 10000,
			req:       Request{PassengerCount: 2, TripType: RoundTrip, FareClass: Business},
			subtotal:  20000,
			total:     "60000",
		},
		{
			name:      "one way economy single",
			basePrice: 5000,
			req:       Request{PassengerCount: 1, TripType: OneWay, FareClass: Economy},
			subtotal:  5000,
			total:     "5000",
		},
		{
			name:      "odd one way business keeps the half unit",
			basePrice: 333,
			req:       Request{PassengerCount: 1, TripType: OneWay, FareClass: Business},
			subtotal:  333,
			total:     "499.5",
		},
		{
			name:      "free flight",
			basePrice: 0,
			req:       Request{PassengerCount: 9, TripType: RoundTrip, FareClass: Business},
			subtotal:  0,
			total:     "0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Calculate(tc.basePrice, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.basePrice, b.UnitPrice)
			assert.Equal(t, tc.subtotal, b.Subtotal)
			assert.Equal(t, tc.total, b.Total.String())
		})
	}
}

func TestCalculate_PassengerBoundaries(t *testing.T) {
	for _, n := range []int{0, 10, -1} {
		_, err := Calculate(1000, Request{PassengerCount: n, TripType: OneWay, FareClass: Economy})
		assert.True(t, errors.Is(err, ErrInvalidArgument), "passengers=%d", n)
	}
	for _, n := range []int{1, 9} {
		_, err := Calculate(1000, Request{PassengerCount: n, TripType: OneWay, FareClass: Economy})
		assert.NoError(t, err, "passengers=%d", n)
	}
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	testCases := []struct {
		name      string
		basePrice int64
		req       Request
	}{
		{"negative price", -1, Request{PassengerCount: 1, TripType: OneWay, FareClass: Economy}},
		{"unknown trip type", 100, Request{PassengerCount: 1, TripType: "multi_city", FareClass: Economy}},
		{"empty fare class", 100, Request{PassengerCount: 1, TripType: OneWay}},
		{"price too large", MaxBasePrice + 1, Request{PassengerCount: 1, TripType: OneWay, FareClass: Economy}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(tc.basePrice, tc.req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestCalculate_MaxBasePrice(t *testing.T) {
	b, err := Calculate(MaxBasePrice, Request{PassengerCount: MaxPassengers, TripType: RoundTrip, FareClass: Business})
	require.NoError(t, err)
	assert.True(t, b.Total.IsPositive())
	assert.Equal(t, int64(MaxBasePrice*MaxPassengers), b.Subtotal)
}

func TestCalculate_MonotonicInPassengers(t *testing.T) {
	for _, trip := range []TripType{OneWay, RoundTrip} {
		for _, class := range []FareClass{Economy, Business} {
			prev := decimal.NewFromInt(-1)
			for n := MinPassengers; n <= MaxPassengers; n++ {
				b, err := Calculate(12345, Request{PassengerCount: n, TripType: trip, FareClass: class})
				require.NoError(t, err)
				assert.True(t, b.Total.GreaterThan(prev), "%s/%s n=%d", trip, class, n)
				prev = b.Total
			}
		}
	}
}

func TestCalculate_RoundTripDoubles(t *testing.T) {
	for n := MinPassengers; n <= MaxPassengers; n++ {
		one, err := Calculate(7777, Request{PassengerCount: n, TripType: OneWay, FareClass: Economy})
		require.NoError(t, err)
		round, err := Calculate(7777, Request{PassengerCount: n, TripType: RoundTrip, FareClass: Economy})
		require.NoError(t, err)
		assert.True(t, one.Total.Mul(decimal.NewFromInt(2)).Equal(round.Total))
		assert.Equal(t, int64(2), round.TripMultiplier)
	}
}

func TestCalculate_BusinessSurcharge(t *testing.T) {
	for _, trip := range []TripType{OneWay, RoundTrip} {
		for n := MinPassengers; n <= MaxPassengers; n++ {
			eco, err := Calculate(4321, Request{PassengerCount: n, TripType: trip, FareClass: Economy})
			require.NoError(t, err)
			biz, err := Calculate(4321, Request{PassengerCount: n, TripType: trip, FareClass: Business})
			require.NoError(t, err)
			assert.True(t, eco.Total.Mul(decimal.RequireFromString("1.5")).Equal(biz.Total))
			assert.Equal(t, "0.5", biz.ClassSurchargeRate.String())
		}
	}
}

func TestParseTripTypeAndFareClass(t *testing.T) {
	tt, err := ParseTripType("round_trip")
	assert.NoError(t, err)
	assert.Equal(t, RoundTrip, tt)

	_, err = ParseTripType("RoundTrip")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	fc, err := ParseFareClass("business")
	assert.NoError(t, err)
	assert.Equal(t, Business, fc)

	_, err = ParseFareClass("first")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
