package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kwairways/backend/config"
	"github.com/kwairways/backend/internal/bootstrap"
	"github.com/kwairways/backend/internal/cache"
	"github.com/kwairways/backend/internal/kafka"
	"github.com/kwairways/backend/internal/logger"
	"github.com/kwairways/backend/internal/payment"
	"github.com/kwairways/backend/internal/postgres"
	"github.com/kwairways/backend/internal/repository"
	"github.com/kwairways/backend/internal/service/booking"
	"github.com/kwairways/backend/internal/service/flights"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	gateway := newGateway(cfg.Payment)

	flightRepo := repository.NewFlightRepository(store.Pool())
	bookingRepo := repository.NewBookingRepository(store.Pool())
	paymentRepo := repository.NewPaymentRepository(store.Pool())

	flightService := flights.NewFlightService(flightRepo, redisCache)
	bookingService := booking.NewBookingService(
		store,
		bookingRepo,
		flightRepo,
		paymentRepo,
		gateway,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPaymentTimeout(time.Duration(cfg.Payment.TimeoutSeconds)*time.Second),
		booking.WithReferenceRetries(cfg.Booking.ReferenceRetries),
	)

	slog.Info("starting api server", "address", cfg.HTTP.Address)
	if err := bootstrap.Run(ctx, cfg, store, flightService, bookingService); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newGateway(cfg config.PaymentConfig) payment.Gateway {
	if cfg.Mode == "simulator" {
		slog.Warn("using simulated payment gateway")
		return payment.NewSimulator()
	}
	return payment.NewHTTPGateway(payment.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}
