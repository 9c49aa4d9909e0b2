package api

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/fare"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var userActor = booking.Actor{UserID: 7}

func sampleBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:             1,
		PNR:            "QX7K2M",
		UserID:         7,
		FlightID:       1,
		PassengerCount: 1,
		TripType:       fare.OneWay,
		FareClass:      fare.Business,
		Total:          decimal.RequireFromString("7500.5"),
		Currency:       "BDT",
		Status:         status,
		Email:          "karim@example.com",
		Passengers:     []domain.Passenger{{FullName: "Karim Ahmed"}},
	}
}

func TestBookingHandler_RequiresToken(t *testing.T) {
	s := newTestServer()

	w := s.do(t, "GET", "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, "GET", "/api/bookings", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	s.bookings.AssertNotCalled(t, "ListForUser")
}

func TestBookingHandler_start(t *testing.T) {
	s := newTestServer()
	req := fare.Request{PassengerCount: 1, TripType: fare.OneWay, FareClass: fare.Business}
	draft := &booking.Draft{ID: "d1", UserID: 7, FlightID: 1, Request: req, Currency: "BDT"}
	s.bookings.On("StartBooking", mock.Anything, int64(7), int64(1), req).Return(draft, nil).Once()

	w := s.do(t, "POST", "/api/bookings/drafts", "user-token", map[string]any{
		"flight_id":       1,
		"passenger_count": 1,
		"trip_type":       "one_way",
		"fare_class":      "business",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "d1", decode(t, w)["id"])
	s.bookings.AssertExpectations(t)
}

func TestBookingHandler_start_Invalid(t *testing.T) {
	s := newTestServer()

	w := s.do(t, "POST", "/api/bookings/drafts", "user-token", map[string]any{"passenger_count": 1, "trip_type": "one_way", "fare_class": "economy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "POST", "/api/bookings/drafts", "user-token", map[string]any{"flight_id": 1, "passenger_count": 0, "trip_type": "one_way", "fare_class": "economy"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	s.bookings.AssertNotCalled(t, "StartBooking")
}

func TestBookingHandler_create(t *testing.T) {
	s := newTestServer()
	input := booking.CreateBookingInput{
		UserID:  7,
		DraftID: "d1",
		Email:   "karim@example.com",
		Passengers: []domain.Passenger{
			{FullName: "Karim Ahmed", Phone: "01700000000", DateOfBirth: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
	s.bookings.On("CreateBooking", mock.Anything, input).Return(sampleBooking(domain.BookingStatusPending), nil).Once()

	w := s.do(t, "POST", "/api/bookings", "user-token", createBookingRequest{
		DraftID: "d1",
		Email:   "karim@example.com",
		Passengers: []passengerRequest{
			{FullName: "Karim Ahmed", Phone: "01700000000", DateOfBirth: "1990-01-02"},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "QX7K2M", body["pnr"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, "7500.5", body["total"])
	s.bookings.AssertExpectations(t)
}

func TestBookingHandler_create_BadDate(t *testing.T) {
	s := newTestServer()

	w := s.do(t, "POST", "/api/bookings", "user-token", createBookingRequest{
		DraftID:    "d1",
		Email:      "karim@example.com",
		Passengers: []passengerRequest{{FullName: "Karim", DateOfBirth: "02/01/1990"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.bookings.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_create_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"locked", booking.ErrLocked, http.StatusConflict},
		{"quote changed", booking.ErrQuoteChanged, http.StatusConflict},
		{"sold out", flights.ErrUnavailable, http.StatusConflict},
		{"draft gone", booking.ErrNotFound, http.StatusNotFound},
		{"foreign draft", booking.ErrForbidden, http.StatusForbidden},
		{"bad input", booking.ErrInvalidInput, http.StatusBadRequest},
		{"corrupt flight", fare.ErrInvalidState, http.StatusUnprocessableEntity},
		{"database", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.bookings.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			w := s.do(t, "POST", "/api/bookings", "user-token", createBookingRequest{DraftID: "d1", Email: "a@b.c"})

			assert.Equal(t, tc.expected, w.Code)
		})
	}
}

func TestBookingHandler_list(t *testing.T) {
	s := newTestServer()
	tickets := []domain.Ticket{{Booking: *sampleBooking(domain.BookingStatusConfirmed), Status: fare.StatusScheduled}}
	s.bookings.On("ListForUser", mock.Anything, int64(7)).Return(tickets, nil).Once()

	w := s.do(t, "GET", "/api/bookings", "user-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pnr":"QX7K2M"`)
	s.bookings.AssertExpectations(t)
}

func TestBookingHandler_get(t *testing.T) {
	s := newTestServer()
	ticket := &domain.Ticket{Booking: *sampleBooking(domain.BookingStatusConfirmed), Status: fare.StatusDelayed}
	s.bookings.On("GetTicket", mock.Anything, "QX7K2M", userActor).Return(ticket, nil).Once()
	s.bookings.On("GetTicket", mock.Anything, "OTHER1", userActor).Return(nil, booking.ErrForbidden).Once()

	w := s.do(t, "GET", "/api/bookings/QX7K2M", "user-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"delayed"`)

	w = s.do(t, "GET", "/api/bookings/OTHER1", "user-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_eticket(t *testing.T) {
	s := newTestServer()
	dep := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Booking:  *sampleBooking(domain.BookingStatusConfirmed),
		Flight:   domain.Flight{FlightNumber: "BG147", FromAirport: "DAC", ToAirport: "CXB", DepartureTime: dep, ArrivalTime: dep.Add(time.Hour)},
		Status:   fare.StatusScheduled,
		Duration: fare.Duration{Hours: 1},
	}
	s.bookings.On("GetTicket", mock.Anything, "QX7K2M", userActor).Return(ticket, nil).Once()

	w := s.do(t, "GET", "/api/bookings/QX7K2M/eticket", "user-token", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "eticket-qx7k2m.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestBookingHandler_confirm(t *testing.T) {
	s := newTestServer()
	admin := booking.Actor{UserID: 1, Admin: true}
	s.bookings.On("ConfirmBooking", mock.Anything, "QX7K2M", admin).Return(sampleBooking(domain.BookingStatusConfirmed), nil).Once()
	s.bookings.On("ConfirmBooking", mock.Anything, "EXPIRD", admin).Return(nil, booking.ErrNotPending).Once()

	w := s.do(t, "PUT", "/api/bookings/QX7K2M/confirm", "admin-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CONFIRMED", decode(t, w)["status"])

	w = s.do(t, "PUT", "/api/bookings/EXPIRD/confirm", "admin-token", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	s.bookings.AssertExpectations(t)
}

func TestBookingHandler_confirm_OwnerCannotMarkPaid(t *testing.T) {
	s := newTestServer()

	w := s.do(t, "PUT", "/api/bookings/QX7K2M/confirm", "user-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, "PUT", "/api/bookings/QX7K2M/confirm", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	s.bookings.AssertNotCalled(t, "ConfirmBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_cancel(t *testing.T) {
	s := newTestServer()
	admin := booking.Actor{UserID: 1, Admin: true}
	s.bookings.On("CancelBooking", mock.Anything, "QX7K2M", admin).Return(sampleBooking(domain.BookingStatusCancelled), nil).Once()

	w := s.do(t, "DELETE", "/api/bookings/QX7K2M", "admin-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", decode(t, w)["status"])
	s.bookings.AssertExpectations(t)
}
