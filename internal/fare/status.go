package fare

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusInFlight  Status = "in_flight"
	StatusArrived   Status = "arrived"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
)

// Flags are the externally stored markers on a flight or ticket.
type Flags struct {
	Cancelled bool
	Issue     bool
}

// Classify derives the status of a flight at now. Rules are checked in
// priority order: cancelled, delayed, scheduled, in flight, arrived.
// The result depends on now and must not be cached across requests.
func Classify(departure, arrival time.Time, flags Flags, now time.Time) (Status, error) {
	if arrival.Before(departure) {
		return "", fmt.Errorf("%w: arrival %s before departure %s", ErrInvalidState,
			arrival.Format(time.RFC3339), departure.Format(time.RFC3339))
	}

	switch {
	case flags.Cancelled:
		return StatusCancelled, nil
	case flags.Issue && now.Before(departure):
		return StatusDelayed, nil
	case now.Before(departure):
		return StatusScheduled, nil
	case now.Before(arrival):
		return StatusInFlight, nil
	default:
		return StatusArrived, nil
	}
}

// Duration is a flight length split for display.
type Duration struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
}

func (d Duration) String() string {
	return fmt.Sprintf("%dh %02dm", d.Hours, d.Minutes)
}

// FlightDuration truncates to whole seconds before splitting.
func FlightDuration(departure, arrival time.Time) (Duration, error) {
	seconds := int64(arrival.Sub(departure) / time.Second)
	if seconds < 0 {
		return Duration{}, fmt.Errorf("%w: negative flight duration %ds", ErrInvalidState, seconds)
	}
	return Duration{
		Hours:   seconds / 3600,
		Minutes: (seconds % 3600) / 60,
	}, nil
}
