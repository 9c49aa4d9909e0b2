package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/fare"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = errors.New("booking not found")
	ErrNotPending   = errors.New("booking is not pending")
	ErrLocked       = errors.New("a booking for this flight is already in progress")
	ErrForbidden    = errors.New("booking belongs to another user")
	ErrInvalidInput = errors.New("invalid booking")
	ErrQuoteChanged = errors.New("fare changed since the quote, please start again")
)

type BookingUseCase interface {
	StartBooking(ctx context.Context, userID, flightID int64, req fare.Request) (*Draft, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, pnr string, actor Actor) (*domain.Booking, error)
	CancelBooking(ctx context.Context, pnr string, actor Actor) (*domain.Booking, error)
	GetTicket(ctx context.Context, pnr string, actor Actor) (*domain.Ticket, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

type Quoter interface {
	Quote(ctx context.Context, id int64, req fare.Request) (*flights.Quote, error)
}

type Cache interface {
	AcquireBookingLock(ctx context.Context, flightID, userID int64, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, flightID, userID int64) error
	// InvalidateFlights drops the cached flight list, which carries seat counts.
	InvalidateFlights(ctx context.Context) error
}

// SessionStore keeps short-lived per-user state between requests.
type SessionStore interface {
	SetSession(ctx context.Context, key string, value any, ttl time.Duration) error
	GetSession(ctx context.Context, key string, dest any) (bool, error)
	DeleteSession(ctx context.Context, key string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Actor is who is acting on a booking.
type Actor struct {
	UserID int64
	Admin  bool
}

func (a Actor) owns(b *domain.Booking) bool {
	return a.Admin || a.UserID == b.UserID
}

// Draft is the first half of a booking: a priced request waiting for
// passenger details.
type Draft struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"user_id"`
	FlightID  int64          `json:"flight_id"`
	Request   fare.Request   `json:"request"`
	Breakdown fare.Breakdown `json:"breakdown"`
	Currency  string         `json:"currency"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type CreateBookingInput struct {
	UserID     int64              `json:"user_id"`
	DraftID    string             `json:"draft_id"`
	Email      string             `json:"email"`
	Passengers []domain.Passenger `json:"passengers"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	quoter             Quoter
	cache              Cache
	sessions           SessionStore
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	confirmationTTL    time.Duration
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flightRepo repository.FlightRepository,
	quoter Quoter,
	cache Cache,
	sessions SessionStore,
	producer Producer,
	bookingTopic string,
	holdTTL, confirmationTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		flights:         flightRepo,
		quoter:          quoter,
		cache:           cache,
		sessions:        sessions,
		producer:        producer,
		bookingTopic:    bookingTopic,
		holdTTL:         holdTTL,
		confirmationTTL: confirmationTTL,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// StartBooking prices the request and parks it as a draft for holdTTL.
func (s *BookingService) StartBooking(ctx context.Context, userID, flightID int64, req fare.Request) (*Draft, error) {
	quote, err := s.quoter.Quote(ctx, flightID, req)
	if err != nil {
		return nil, err
	}

	draft := &Draft{
		ID:        uuid.NewString(),
		UserID:    userID,
		FlightID:  flightID,
		Request:   req,
		Breakdown: quote.Breakdown,
		Currency:  quote.Currency,
		ExpiresAt: s.now().Add(s.holdTTL),
	}
	if err := s.sessions.SetSession(ctx, draftKey(draft.ID), draft, s.holdTTL); err != nil {
		return nil, fmt.Errorf("failed to store draft: %w", err)
	}
	return draft, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.DraftID == "" {
		return nil, fmt.Errorf("%w: draft id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	var draft Draft
	found, err := s.sessions.GetSession(ctx, draftKey(input.DraftID), &draft)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: draft expired or unknown", ErrNotFound)
	}
	if draft.UserID != input.UserID {
		return nil, ErrForbidden
	}
	if err := s.validatePassengers(input.Passengers, draft.Request.PassengerCount); err != nil {
		return nil, err
	}

	// Price and availability may have moved while passengers were entered.
	quote, err := s.quoter.Quote(ctx, draft.FlightID, draft.Request)
	if err != nil {
		return nil, err
	}
	if !quote.Breakdown.Total.Equal(draft.Breakdown.Total) {
		_ = s.sessions.DeleteSession(ctx, draftKey(draft.ID))
		return nil, ErrQuoteChanged
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireBookingLock(ctx, draft.FlightID, input.UserID, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrLocked
		}
		locked = true
	}

	expiresIn := s.confirmationTTL
	if expiresIn == 0 {
		expiresIn = s.holdTTL
	}

	booking := &domain.Booking{
		PNR:            newPNR(),
		UserID:         input.UserID,
		FlightID:       draft.FlightID,
		PassengerCount: draft.Request.PassengerCount,
		TripType:       draft.Request.TripType,
		FareClass:      draft.Request.FareClass,
		Total:          quote.Breakdown.Total,
		Currency:       quote.Currency,
		Email:          strings.TrimSpace(input.Email),
		ExpiresAt:      s.now().Add(expiresIn),
		Passengers:     normalizePassengers(input.Passengers),
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		if locked {
			_ = s.cache.ReleaseBookingLock(ctx, draft.FlightID, input.UserID)
		}
		if errors.Is(err, repository.ErrNoSeats) {
			return nil, fmt.Errorf("%w: %v", flights.ErrUnavailable, err)
		}
		return nil, err
	}

	booking.Status = domain.BookingStatusPending
	s.seatsChanged(ctx)
	if err := s.sessions.DeleteSession(ctx, draftKey(draft.ID)); err != nil {
		log.WithError(err).WithField("draft_id", draft.ID).Warn("failed to drop booking draft")
	}
	s.publish(ctx, kafka.EventBookingCreated, booking)

	log.WithFields(log.Fields{"pnr": booking.PNR, "flight_id": booking.FlightID, "total": booking.Total.String()}).Info("booking created")
	return booking, nil
}

// ConfirmBooking is called once the payment gateway reports success. The
// transition only applies to a booking that is still pending when the
// update runs, so a concurrent expiry wins.
func (s *BookingService) ConfirmBooking(ctx context.Context, pnr string, actor Actor) (*domain.Booking, error) {
	current, err := s.get(ctx, pnr, actor)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, ErrNotPending
	}
	if !s.now().Before(current.ExpiresAt) {
		return nil, fmt.Errorf("%w: payment window closed", ErrNotPending)
	}

	updated, err := s.bookings.UpdateStatus(ctx, current.PNR,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusConfirmed)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, ErrNotPending
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingConfirmed, updated)
	s.releaseLock(ctx, updated)
	return updated, nil
}

// CancelBooking is idempotent for bookings that are already closed. Seats
// go back to the flight only when this call performed the cancellation.
func (s *BookingService) CancelBooking(ctx context.Context, pnr string, actor Actor) (*domain.Booking, error) {
	current, err := s.get(ctx, pnr, actor)
	if err != nil {
		return nil, err
	}
	if closed(current.Status) {
		return current, nil
	}

	updated, err := s.bookings.Cancel(ctx, current.PNR,
		[]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed})
	if errors.Is(err, repository.ErrStatusChanged) {
		// closed by someone else in between
		return s.get(ctx, current.PNR, actor)
	}
	if err != nil {
		return nil, err
	}
	s.seatsChanged(ctx)
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	s.releaseLock(ctx, updated)
	return updated, nil
}

// ExpirePendingBookings closes pending bookings whose hold has run out; the
// repository returns their seats in the same statement.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if len(expired) > 0 {
		s.seatsChanged(ctx)
	}
	for i := range expired {
		b := &expired[i]
		s.publish(ctx, kafka.EventBookingExpired, b)
		s.releaseLock(ctx, b)
	}
	return expired, nil
}

func (s *BookingService) GetTicket(ctx context.Context, pnr string, actor Actor) (*domain.Ticket, error) {
	b, err := s.get(ctx, pnr, actor)
	if err != nil {
		return nil, err
	}
	f, err := s.flights.GetByID(ctx, b.FlightID)
	if err != nil {
		return nil, err
	}
	t, err := newTicket(*b, *f, s.now())
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListForUser returns the user's tickets, newest first. Tickets on corrupt
// flight records are left out.
func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	list, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	seen := make(map[int64]*domain.Flight)
	tickets := make([]domain.Ticket, 0, len(list))
	for _, b := range list {
		f, ok := seen[b.FlightID]
		if !ok {
			f, err = s.flights.GetByID(ctx, b.FlightID)
			if err != nil {
				return nil, err
			}
			seen[b.FlightID] = f
		}
		t, err := newTicket(b, *f, now)
		if err != nil {
			log.WithError(err).WithField("pnr", b.PNR).Error("skipping ticket on corrupt flight")
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func newTicket(b domain.Booking, f domain.Flight, now time.Time) (domain.Ticket, error) {
	status, err := fare.Classify(f.DepartureTime, f.ArrivalTime, fare.Flags{Cancelled: f.Cancelled || closed(b.Status), Issue: f.Issue}, now)
	if err != nil {
		return domain.Ticket{}, err
	}
	duration, err := fare.FlightDuration(f.DepartureTime, f.ArrivalTime)
	if err != nil {
		return domain.Ticket{}, err
	}
	return domain.Ticket{Booking: b, Flight: f, Status: status, Duration: duration}, nil
}

func (s *BookingService) get(ctx context.Context, pnr string, actor Actor) (*domain.Booking, error) {
	b, err := s.bookings.GetByPNR(ctx, strings.ToUpper(pnr))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.owns(b) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *BookingService) validatePassengers(passengers []domain.Passenger, want int) error {
	if len(passengers) != want {
		return fmt.Errorf("%w: expected %d passengers, got %d", ErrInvalidInput, want, len(passengers))
	}
	today := s.now()
	for i, p := range passengers {
		if strings.TrimSpace(p.FullName) == "" {
			return fmt.Errorf("%w: passenger %d: name is required", ErrInvalidInput, i+1)
		}
		if p.DateOfBirth.After(today) {
			return fmt.Errorf("%w: passenger %d: date of birth is in the future", ErrInvalidInput, i+1)
		}
	}
	return nil
}

func normalizePassengers(in []domain.Passenger) []domain.Passenger {
	out := make([]domain.Passenger, len(in))
	for i, p := range in {
		out[i] = domain.Passenger{
			FullName:    strings.Join(strings.Fields(p.FullName), " "),
			Phone:       strings.TrimSpace(p.Phone),
			DateOfBirth: p.DateOfBirth,
		}
	}
	return out
}

func closed(status domain.BookingStatus) bool {
	return status == domain.BookingStatusCancelled || status == domain.BookingStatusExpired
}

func (s *BookingService) seatsChanged(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		log.WithError(err).Warn("failed to invalidate flights cache")
	}
}

func (s *BookingService) releaseLock(ctx context.Context, b *domain.Booking) {
	if s.cache == nil {
		return
	}
	_ = s.cache.ReleaseBookingLock(ctx, b.FlightID, b.UserID)
}

// publish never fails the caller; the state change is already committed.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:           eventType,
		PNR:            booking.PNR,
		FlightID:       booking.FlightID,
		PassengerCount: booking.PassengerCount,
		FareClass:      string(booking.FareClass),
		TripType:       string(booking.TripType),
		Total:          booking.Total.String(),
		Currency:       booking.Currency,
		Email:          booking.Email,
		Status:         string(booking.Status),
		ExpiresAt:      booking.ExpiresAt,
	}

	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, booking.PNR, event); err != nil {
			log.WithError(err).WithFields(log.Fields{"event": eventType, "pnr": booking.PNR, "topic": topic}).Warn("failed to publish booking event")
		}
	}
}

func draftKey(id string) string {
	return "draft:" + id
}

const pnrAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newPNR returns a six character record locator without 0/O or 1/I.
func newPNR() string {
	id := uuid.New()
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(pnrAlphabet[int(id[i])%len(pnrAlphabet)])
	}
	return b.String()
}

var _ BookingUseCase = (*BookingService)(nil)
