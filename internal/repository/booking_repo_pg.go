package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, pnr string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error)
	Cancel(ctx context.Context, pnr string, from []domain.BookingStatus) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, pnr, user_id, flight_id, passenger_count, trip_type, fare_class, total::text, currency, status, email, expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b     domain.Booking
		total string
	)
	if err := row.Scan(&b.ID, &b.PNR, &b.UserID, &b.FlightID, &b.PassengerCount, &b.TripType, &b.FareClass,
		&total, &b.Currency, &b.Status, &b.Email, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("booking %s: bad total %q: %w", b.PNR, total, err)
	}
	b.Total = amount
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// CreatePending takes passenger count seats from the flight and stores the
// booking with its passengers in one transaction.
func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND available_seats >= $2 RETURNING available_seats`, booking.FlightID, booking.PassengerCount).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoSeats
	}
	if err != nil {
		return err
	}

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (pnr, user_id, flight_id, passenger_count, trip_type, fare_class, total, currency, status, email, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		booking.PNR, booking.UserID, booking.FlightID, booking.PassengerCount, booking.TripType, booking.FareClass,
		booking.Total.String(), booking.Currency, booking.Status, booking.Email, booking.ExpiresAt).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	rows := make([][]any, 0, len(booking.Passengers))
	for _, p := range booking.Passengers {
		var dob any
		if !p.DateOfBirth.IsZero() {
			dob = p.DateOfBirth
		}
		rows = append(rows, []any{booking.ID, p.FullName, p.Phone, dob})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"booking_passengers"},
		[]string{"booking_id", "full_name", "phone", "date_of_birth"}, pgx.CopyFromRows(rows)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr))
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.db.Query(ctx, `SELECT full_name, phone, date_of_birth FROM booking_passengers WHERE booking_id=$1 ORDER BY id`, b.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p   domain.Passenger
			dob *time.Time
		)
		if err := rows.Scan(&p.FullName, &p.Phone, &dob); err != nil {
			return nil, err
		}
		if dob != nil {
			p.DateOfBirth = *dob
		}
		b.Passengers = append(b.Passengers, p)
	}
	return b, rows.Err()
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// UpdateStatus moves the booking to status to only if it is currently in
// one of from. A booking in any other status yields ErrStatusChanged.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, pnr string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE pnr=$2 AND status = ANY($3) RETURNING `+bookingColumns, to, pnr, statusNames(from)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missedTransition(ctx, pnr)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel marks the booking CANCELLED and gives its seats back to the flight
// in the same statement, so seats are returned once per booking.
func (r *PGBookingRepository) Cancel(ctx context.Context, pnr string, from []domain.BookingStatus) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `
		WITH changed AS (
			UPDATE bookings SET status=$1, updated_at=now()
			WHERE pnr=$2 AND status = ANY($3)
			RETURNING `+bookingColumns+`
		), released AS (
			UPDATE flights f
			SET available_seats = LEAST(f.available_seats + c.passenger_count, f.total_seats),
				updated_at = now()
			FROM changed c
			WHERE f.id = c.flight_id
		)
		SELECT * FROM changed`, domain.BookingStatusCancelled, pnr, statusNames(from)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missedTransition(ctx, pnr)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ExpirePendingBefore expires every pending booking whose hold ended by
// deadline and returns their seats in the same statement.
func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `
		WITH changed AS (
			UPDATE bookings SET status=$1, updated_at=now()
			WHERE status=$2 AND expires_at <= $3
			RETURNING `+bookingColumns+`
		), released AS (
			UPDATE flights f
			SET available_seats = LEAST(f.available_seats + s.seats, f.total_seats),
				updated_at = now()
			FROM (SELECT flight_id, SUM(passenger_count) AS seats FROM changed GROUP BY flight_id) s
			WHERE f.id = s.flight_id
		)
		SELECT * FROM changed`,
		domain.BookingStatusExpired, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) missedTransition(ctx context.Context, pnr string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE pnr=$1)`, pnr).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func statusNames(statuses []domain.BookingStatus) []string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return names
}

var _ BookingRepository = (*PGBookingRepository)(nil)
