package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/ticket"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type startBookingRequest struct {
	FlightID int64 `json:"flight_id"`
	fareRequest
}

type passengerRequest struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
}

type createBookingRequest struct {
	DraftID    string             `json:"draft_id"`
	Email      string             `json:"email"`
	Passengers []passengerRequest `json:"passengers"`
}

func (r createBookingRequest) passengers() ([]domain.Passenger, error) {
	out := make([]domain.Passenger, 0, len(r.Passengers))
	for i, p := range r.Passengers {
		var dob time.Time
		if p.DateOfBirth != "" {
			parsed, err := time.Parse(dateLayout, p.DateOfBirth)
			if err != nil {
				return nil, fmt.Errorf("passenger %d: date_of_birth must be YYYY-MM-DD", i+1)
			}
			dob = parsed
		}
		out = append(out, domain.Passenger{FullName: p.FullName, Phone: p.Phone, DateOfBirth: dob})
	}
	return out, nil
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/drafts", h.start)
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:pnr", h.get)
	router.GET("/:pnr/eticket", h.eticket)
	router.PUT("/:pnr/confirm", RequireAdmin(), h.confirm)
	router.DELETE("/:pnr", h.cancel)
}

func (h *BookingHandler) start(c *gin.Context) {
	var body startBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	if body.FlightID <= 0 {
		badRequest(c, "flight_id is required")
		return
	}
	req, err := body.toFare()
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := currentUserID(c)
	draft, err := h.service.StartBooking(c.Request.Context(), userID, body.FlightID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *BookingHandler) create(c *gin.Context) {
	var body createBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	passengers, err := body.passengers()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	userID, _ := currentUserID(c)
	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:     userID,
		DraftID:    body.DraftID,
		Email:      body.Email,
		Passengers: passengers,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) list(c *gin.Context) {
	userID, _ := currentUserID(c)
	tickets, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *BookingHandler) get(c *gin.Context) {
	t, err := h.service.GetTicket(c.Request.Context(), c.Param("pnr"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *BookingHandler) eticket(c *gin.Context) {
	t, err := h.service.GetTicket(c.Request.Context(), c.Param("pnr"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := ticket.Render(*t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="eticket-%s.pdf"`, strings.ToLower(t.Booking.PNR)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// confirm stands in for the payment gateway's success callback, so only
// admins may call it. Owners never mark their own bookings paid.
func (h *BookingHandler) confirm(c *gin.Context) {
	updated, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("pnr"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	updated, err := h.service.CancelBooking(c.Request.Context(), c.Param("pnr"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
