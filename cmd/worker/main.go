package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kwairways/backend/config"
	"github.com/kwairways/backend/internal/email"
	"github.com/kwairways/backend/internal/kafka"
	"github.com/kwairways/backend/internal/logger"
	"github.com/kwairways/backend/internal/postgres"
	"github.com/kwairways/backend/internal/repository"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker consumes booking notifications for email fan-out and
// periodically settles confirmed bookings whose flight has departed.
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

	bookingRepo := repository.NewBookingRepository(store.Pool())

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				slog.Warn("decode notification event", "error", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("consumer stopped", "error", err)
		}
	}()

	sweep := time.Duration(cfg.Worker.CompletionSweepMinutes) * time.Minute
	if sweep <= 0 {
		sweep = 10 * time.Minute
	}
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	slog.Info("worker started", "completion_sweep", sweep.String())
	for {
		select {
		case <-ticker.C:
			completed, err := bookingRepo.MarkCompletedDeparted(ctx, time.Now())
			if err != nil {
				slog.Error("completion sweep", "error", err)
				continue
			}
			if completed > 0 {
				slog.Info("completed departed bookings", "count", completed)
			}
		case <-ctx.Done():
			slog.Info("shutting down worker")
			return
		}
	}
}
