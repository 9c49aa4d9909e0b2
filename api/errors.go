package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/fare"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/auth"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/feedback"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	msgUnprocessable = "unable to process this flight"
	msgInternal      = "internal error"
)

// statusFor maps a service error onto an HTTP status and the message the
// client is allowed to see.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, fare.ErrInvalidArgument), errors.Is(err, fare.ErrInvalidState):
		return http.StatusUnprocessableEntity, msgUnprocessable
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, booking.ErrForbidden):
		return http.StatusForbidden, booking.ErrForbidden.Error()
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, auth.ErrConflict),
		errors.Is(err, booking.ErrLocked),
		errors.Is(err, booking.ErrNotPending),
		errors.Is(err, booking.ErrQuoteChanged),
		errors.Is(err, flights.ErrUnavailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, flights.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, feedback.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, msgInternal
}

func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
		_ = c.Error(err)
		log.WithError(err).WithFields(log.Fields{"path": c.FullPath(), "status": status}).Error("request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
