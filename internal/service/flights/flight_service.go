package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/fare"
	"github.com/Domenick1991/flightdesk/internal/repository"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnavailable  = errors.New("flight is not available for booking")
	ErrInvalidInput = errors.New("invalid flight")
)

type FlightUseCase interface {
	List(ctx context.Context) ([]FlightView, error)
	Search(ctx context.Context, query SearchQuery) ([]FlightView, error)
	GetByID(ctx context.Context, id int64) (*FlightView, error)
	Quote(ctx context.Context, id int64, req fare.Request) (*Quote, error)
	Create(ctx context.Context, input NewFlightInput) (*domain.Flight, error)
	SetFlags(ctx context.Context, id int64, issue, cancelled bool) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// FlightView is a flight with the status and duration derived at one instant.
type FlightView struct {
	domain.Flight
	Status   fare.Status   `json:"status"`
	Duration fare.Duration `json:"duration"`
}

func NewView(f domain.Flight, now time.Time) (FlightView, error) {
	status, err := fare.Classify(f.DepartureTime, f.ArrivalTime, fare.Flags{Cancelled: f.Cancelled, Issue: f.Issue}, now)
	if err != nil {
		return FlightView{}, fmt.Errorf("flight %d: %w", f.ID, err)
	}
	duration, err := fare.FlightDuration(f.DepartureTime, f.ArrivalTime)
	if err != nil {
		return FlightView{}, fmt.Errorf("flight %d: %w", f.ID, err)
	}
	return FlightView{Flight: f, Status: status, Duration: duration}, nil
}

// Bookable reports whether the flight can still be sold.
func (v FlightView) Bookable() bool {
	return v.Status == fare.StatusScheduled || v.Status == fare.StatusDelayed
}

type Quote struct {
	Flight    FlightView     `json:"flight"`
	Request   fare.Request   `json:"request"`
	Breakdown fare.Breakdown `json:"breakdown"`
	Currency  string         `json:"currency"`
}

type SearchQuery struct {
	From string
	To   string
	Date time.Time
}

type NewFlightInput struct {
	FlightNumber  string    `json:"flight_number"`
	Airline       string    `json:"airline"`
	FromAirport   string    `json:"from_airport"`
	ToAirport     string    `json:"to_airport"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	TotalSeats    int       `json:"total_seats"`
	PriceCents    int64     `json:"price_cents"`
}

type FlightServiceOption func(*FlightService)

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

type FlightService struct {
	repo     repository.FlightRepository
	cache    FlightCache
	currency string
	now      func() time.Time
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, currency string, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{repo: repo, cache: cache, currency: currency, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]FlightView, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return s.views(cached), nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			log.WithError(err).Warn("failed to cache flights")
		}
	}
	return s.views(flights), nil
}

func (s *FlightService) Search(ctx context.Context, query SearchQuery) ([]FlightView, error) {
	query.From = strings.TrimSpace(query.From)
	query.To = strings.TrimSpace(query.To)
	if query.From == "" || query.To == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidInput)
	}
	if query.Date.IsZero() {
		return nil, fmt.Errorf("%w: travel date is required", ErrInvalidInput)
	}

	flights, err := s.repo.Search(ctx, query.From, query.To, query.Date)
	if err != nil {
		return nil, err
	}
	return s.views(flights), nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*FlightView, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := NewView(*f, s.now())
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Quote prices req against the flight as it stands now.
func (s *FlightService) Quote(ctx context.Context, id int64, req fare.Request) (*Quote, error) {
	view, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	breakdown, err := fare.Calculate(view.PriceCents, req)
	if err != nil {
		return nil, err
	}

	if !view.Bookable() {
		return nil, fmt.Errorf("%w: flight is %s", ErrUnavailable, view.Status)
	}
	if view.AvailableSeats < req.PassengerCount {
		return nil, fmt.Errorf("%w: only %d seats left", ErrUnavailable, view.AvailableSeats)
	}

	return &Quote{Flight: *view, Request: req, Breakdown: breakdown, Currency: s.currency}, nil
}

func (s *FlightService) Create(ctx context.Context, input NewFlightInput) (*domain.Flight, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	f := &domain.Flight{
		FlightNumber:  strings.ToUpper(strings.TrimSpace(input.FlightNumber)),
		Airline:       strings.TrimSpace(input.Airline),
		FromAirport:   strings.TrimSpace(input.FromAirport),
		ToAirport:     strings.TrimSpace(input.ToAirport),
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		TotalSeats:    input.TotalSeats,
		PriceCents:    input.PriceCents,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return f, nil
}

func (s *FlightService) SetFlags(ctx context.Context, id int64, issue, cancelled bool) (*domain.Flight, error) {
	f, err := s.repo.SetFlags(ctx, id, issue, cancelled)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return f, nil
}

// views drops flights whose times are corrupt; they are never offered.
func (s *FlightService) views(flights []domain.Flight) []FlightView {
	now := s.now()
	out := make([]FlightView, 0, len(flights))
	for _, f := range flights {
		view, err := NewView(f, now)
		if err != nil {
			log.WithError(err).WithField("flight_id", f.ID).Error("skipping corrupt flight record")
			continue
		}
		out = append(out, view)
	}
	return out
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		log.WithError(err).Warn("failed to invalidate flights cache")
	}
}

func (in NewFlightInput) validate() error {
	switch {
	case strings.TrimSpace(in.FlightNumber) == "":
		return fmt.Errorf("%w: flight number is required", ErrInvalidInput)
	case strings.TrimSpace(in.Airline) == "":
		return fmt.Errorf("%w: airline is required", ErrInvalidInput)
	case strings.TrimSpace(in.FromAirport) == "" || strings.TrimSpace(in.ToAirport) == "":
		return fmt.Errorf("%w: origin and destination are required", ErrInvalidInput)
	case strings.EqualFold(strings.TrimSpace(in.FromAirport), strings.TrimSpace(in.ToAirport)):
		return fmt.Errorf("%w: origin and destination must differ", ErrInvalidInput)
	case !in.ArrivalTime.After(in.DepartureTime):
		return fmt.Errorf("%w: arrival must be after departure", ErrInvalidInput)
	case in.TotalSeats <= 0:
		return fmt.Errorf("%w: total seats must be positive", ErrInvalidInput)
	case in.PriceCents < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

var _ FlightUseCase = (*FlightService)(nil)
