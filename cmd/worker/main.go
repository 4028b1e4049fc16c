// Package main runs the background worker that forwards reservation events to Kafka.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tablebook/backend/config"
	"github.com/tablebook/backend/internal/worker"
	"github.com/tablebook/backend/pkg/events"
	"github.com/tablebook/backend/pkg/queue"
	"github.com/tablebook/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ReservationsTopic, logger)
	if err != nil {
		logger.Fatal("kafka", zap.Error(err))
	}
	defer publisher.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewReservationEventProcessor(jobQueue, publisher, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		processor.Run(workerCtx)
	}()
	logger.Info("worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.ReservationsTopic),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-done
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
