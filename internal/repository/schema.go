package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []struct {
	name string
	ddl  string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username VARCHAR(64) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role VARCHAR(16) NOT NULL DEFAULT 'user',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`},
	{"flights", `
CREATE TABLE IF NOT EXISTS flights (
	id BIGSERIAL PRIMARY KEY,
	flight_number VARCHAR(16) NOT NULL,
	airline VARCHAR(128) NOT NULL,
	from_airport VARCHAR(64) NOT NULL,
	to_airport VARCHAR(64) NOT NULL,
	departure_time TIMESTAMPTZ NOT NULL,
	arrival_time TIMESTAMPTZ NOT NULL,
	total_seats INTEGER NOT NULL CHECK (total_seats > 0),
	available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
	price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
	issue BOOLEAN NOT NULL DEFAULT false,
	cancelled BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS flights_route_idx ON flights (from_airport, to_airport, departure_time);`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGSERIAL PRIMARY KEY,
	pnr VARCHAR(16) NOT NULL UNIQUE,
	user_id BIGINT NOT NULL REFERENCES users (id),
	flight_id BIGINT NOT NULL REFERENCES flights (id),
	passenger_count INTEGER NOT NULL,
	trip_type VARCHAR(16) NOT NULL,
	fare_class VARCHAR(16) NOT NULL,
	total NUMERIC(20, 2) NOT NULL,
	currency CHAR(3) NOT NULL,
	status VARCHAR(16) NOT NULL,
	email VARCHAR(255) NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id);
CREATE INDEX IF NOT EXISTS bookings_pending_idx ON bookings (status, expires_at);`},
	{"booking_passengers", `
CREATE TABLE IF NOT EXISTS booking_passengers (
	id BIGSERIAL PRIMARY KEY,
	booking_id BIGINT NOT NULL REFERENCES bookings (id) ON DELETE CASCADE,
	full_name VARCHAR(255) NOT NULL,
	phone VARCHAR(32) NOT NULL DEFAULT '',
	date_of_birth DATE
);`},
	{"feedback", `
CREATE TABLE IF NOT EXISTS feedback (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT REFERENCES users (id),
	email VARCHAR(255) NOT NULL,
	rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`},
}

// InitializeSchema creates missing tables. It is safe to run on every start.
func InitializeSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, t := range schema {
		if _, err := db.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}
	return nil
}
