package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("not found")
	ErrNoSeats  = errors.New("no available seats")
	// ErrStatusChanged means the row exists but is no longer in a status the
	// transition starts from.
	ErrStatusChanged = errors.New("status changed concurrently")
)

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
