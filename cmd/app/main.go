package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightdesk/api"
	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/bootstrap"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/auth"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/feedback"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.InitializeSchema(ctx, pool); err != nil {
		log.Fatalf("initialize schema: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	defer redisCache.Close()
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache, cfg.Fare.Currency)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		flightService,
		redisCache,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.ConfirmationTTL)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	authService := auth.NewAuthService(
		userRepo,
		redisCache,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
		time.Duration(cfg.Auth.PasswordResetTTLMinutes)*time.Minute,
		auth.WithNotifications(producer, cfg.Kafka.NotificationsTopic),
	)
	feedbackService := feedback.NewFeedbackService(feedbackRepo)

	router := api.NewRouter(cfg.HTTP.AllowedOrigins, authService, api.Handlers{
		Flights:  api.NewFlightHandler(flightService),
		Bookings: api.NewBookingHandler(bookingService),
		Auth:     api.NewAuthHandler(authService),
		Feedback: api.NewFeedbackHandler(feedbackService),
	})

	checks := []bootstrap.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: redisCache.Ping},
		{Name: "kafka", Check: producer.CheckConnection},
	}
	if err := bootstrap.Run(ctx, cfg, router, checks...); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Info("server stopped")
}
