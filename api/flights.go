package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightdesk/internal/fare"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type FlightHandler struct {
	service flights.FlightUseCase
}

// fareRequest is the booking form: passenger count, trip type, fare class.
type fareRequest struct {
	PassengerCount int    `json:"passenger_count"`
	TripType       string `json:"trip_type"`
	FareClass      string `json:"fare_class"`
}

func (r fareRequest) toFare() (fare.Request, error) {
	tripType, err := fare.ParseTripType(r.TripType)
	if err != nil {
		return fare.Request{}, err
	}
	fareClass, err := fare.ParseFareClass(r.FareClass)
	if err != nil {
		return fare.Request{}, err
	}
	req := fare.Request{PassengerCount: r.PassengerCount, TripType: tripType, FareClass: fareClass}
	return req, req.Validate()
}

type flagsRequest struct {
	Issue     bool `json:"issue"`
	Cancelled bool `json:"cancelled"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.POST("/:id/quote", h.quote)
}

func (h *FlightHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PATCH("/:id/flags", h.setFlags)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) search(c *gin.Context) {
	day, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	list, err := h.service.Search(c.Request.Context(), flights.SearchQuery{
		From: c.Query("from"),
		To:   c.Query("to"),
		Date: day,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func flightID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) quote(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	var body fareRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	req, err := body.toFare()
	if err != nil {
		respondError(c, err)
		return
	}
	quote, err := h.service.Quote(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *FlightHandler) create(c *gin.Context) {
	var input flights.NewFlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) setFlags(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	var body flagsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.service.SetFlags(c.Request.Context(), id, body.Issue, body.Cancelled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}
