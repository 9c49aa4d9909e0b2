package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, from, to string, day time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	SetFlags(ctx context.Context, id int64, issue, cancelled bool) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, airline, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, price_cents, issue, cancelled, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime,
		&f.TotalSeats, &f.AvailableSeats, &f.PriceCents, &f.Issue, &f.Cancelled, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

// Search matches airports case-insensitively and departures within day (UTC).
func (r *PGFlightRepository) Search(ctx context.Context, from, to string, day time.Time) ([]domain.Flight, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE lower(from_airport) = lower($1) AND lower(to_airport) = lower($2)
		AND departure_time >= $3 AND departure_time < $4
		ORDER BY departure_time`, from, to, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)
		RETURNING id, available_seats, created_at, updated_at`,
		f.FlightNumber, f.Airline, f.FromAirport, f.ToAirport, f.DepartureTime, f.ArrivalTime, f.TotalSeats, f.PriceCents).
		Scan(&f.ID, &f.AvailableSeats, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) SetFlags(ctx context.Context, id int64, issue, cancelled bool) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `UPDATE flights SET issue=$1, cancelled=$2, updated_at=now() WHERE id=$3 RETURNING `+flightColumns, issue, cancelled, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
