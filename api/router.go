package api

import (
	"time"

	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Flights  *FlightHandler
	Bookings *BookingHandler
	Auth     *AuthHandler
	Feedback *FeedbackHandler
}

// NewRouter mounts every handler under /api. An empty origin list allows
// any origin.
func NewRouter(allowedOrigins []string, tokens TokenParser, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), logger.Middleware(), cors.New(corsConfig(allowedOrigins)))

	api := engine.Group("/api")
	h.Flights.Register(api.Group("/flights"))
	h.Auth.Register(api.Group("/auth"))
	h.Bookings.Register(api.Group("/bookings", RequireAuth(tokens)))
	h.Feedback.Register(api.Group("/feedback", OptionalAuth(tokens)))

	admin := api.Group("/admin", RequireAuth(tokens), RequireAdmin())
	h.Flights.RegisterAdmin(admin.Group("/flights"))
	h.Feedback.RegisterAdmin(admin.Group("/feedback"))

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
