package domain

import "github.com/Domenick1991/flightdesk/internal/fare"

// Ticket is a booking rendered against its flight at one instant.
type Ticket struct {
	Booking  Booking       `json:"booking"`
	Flight   Flight        `json:"flight"`
	Status   fare.Status   `json:"status"`
	Duration fare.Duration `json:"duration"`
}
