package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/fare"
	"github.com/Domenick1991/flightdesk/internal/service/auth"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/feedback"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]flights.FlightView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]flights.FlightView), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, query flights.SearchQuery) ([]flights.FlightView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]flights.FlightView), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*flights.FlightView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.FlightView), args.Error(1)
}

func (m *MockFlightUseCase) Quote(ctx context.Context, id int64, req fare.Request) (*flights.Quote, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.Quote), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.NewFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) SetFlags(ctx context.Context, id int64, issue, cancelled bool) (*domain.Flight, error) {
	args := m.Called(ctx, id, issue, cancelled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) StartBooking(ctx context.Context, userID, flightID int64, req fare.Request) (*booking.Draft, error) {
	args := m.Called(ctx, userID, flightID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Draft), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, pnr string, actor booking.Actor) (*domain.Booking, error) {
	args := m.Called(ctx, pnr, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, pnr string, actor booking.Actor) (*domain.Booking, error) {
	args := m.Called(ctx, pnr, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetTicket(ctx context.Context, pnr string, actor booking.Actor) (*domain.Ticket, error) {
	args := m.Called(ctx, pnr, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) ListForUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, input auth.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, login, password string) (*auth.Session, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

func (m *MockAuthUseCase) ParseToken(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

type MockFeedbackUseCase struct {
	mock.Mock
}

func (m *MockFeedbackUseCase) Submit(ctx context.Context, input feedback.Input) (*domain.Feedback, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Feedback), args.Error(1)
}

func (m *MockFeedbackUseCase) List(ctx context.Context, limit int) ([]domain.Feedback, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Feedback), args.Error(1)
}

// stubTokens accepts exactly the tokens it knows.
type stubTokens map[string]*auth.Claims

func (s stubTokens) ParseToken(token string) (*auth.Claims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

var testTokens = stubTokens{
	"user-token":  {UserID: 7, Role: domain.RoleUser},
	"admin-token": {UserID: 1, Role: domain.RoleAdmin},
}

type testServer struct {
	flights  *MockFlightUseCase
	bookings *MockBookingUseCase
	auth     *MockAuthUseCase
	feedback *MockFeedbackUseCase
	router   *gin.Engine
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		flights:  &MockFlightUseCase{},
		bookings: &MockBookingUseCase{},
		auth:     &MockAuthUseCase{},
		feedback: &MockFeedbackUseCase{},
	}
	s.router = NewRouter(nil, testTokens, Handlers{
		Flights:  NewFlightHandler(s.flights),
		Bookings: NewBookingHandler(s.bookings),
		Auth:     NewAuthHandler(s.auth),
		Feedback: NewFeedbackHandler(s.feedback),
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
