// Package main runs the reservation HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tablebook/backend/config"
	"github.com/tablebook/backend/internal/auth"
	"github.com/tablebook/backend/internal/availability"
	"github.com/tablebook/backend/internal/businesses"
	"github.com/tablebook/backend/internal/middleware"
	"github.com/tablebook/backend/internal/realtime"
	"github.com/tablebook/backend/internal/reservations"
	"github.com/tablebook/backend/internal/tenancy"
	"github.com/tablebook/backend/pkg/database"
	"github.com/tablebook/backend/pkg/queue"
	"github.com/tablebook/backend/pkg/redis"
	"github.com/tablebook/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	executor := tenancy.NewExecutor(pool, logger)

	// Businesses and availability
	businessRepo := businesses.NewRepository()
	reservationRepo := reservations.NewRepository()
	resolver := availability.NewResolver(executor, reservationRepo, cfg.Reservation.DurationMinutes)
	businessHandler := businesses.NewHandler(executor, businessRepo, resolver, logger)

	// Reservations
	codes := reservations.NewCodeGenerator(cfg.Reservation.CodePrefix)
	reservationService := reservations.NewService(executor, businessRepo, reservationRepo, resolver, codes, logger)
	reservationService.AddNotifier(reservations.NewBroadcastNotifier(hub))
	if len(cfg.Kafka.Brokers) > 0 {
		jobQueue := queue.NewQueue(rdb.Client, logger)
		reservationService.AddNotifier(reservations.NewQueueNotifier(jobQueue, logger))
	} else {
		logger.Info("kafka brokers not configured; reservation events are not queued")
	}
	reservationHandler := reservations.NewHandler(reservationService, logger)

	authorizeWatch := func(ctx context.Context, token string, businessID int64) error {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return err
		}
		_, err = businessHandler.Find(ctx, middleware.ScopeFor(claims), businessID)
		return err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			response.Fail(c, http.StatusServiceUnavailable, "database_unavailable", "database unreachable")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})

	// Protected API (JWT required, caller must carry a tenant or be admin)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService), middleware.RequireTenant())
	{
		api.GET("/businesses/:id", businessHandler.Get)
		api.GET("/businesses/:id/availability", businessHandler.Availability)
		api.POST("/businesses/:id/reservations", reservationHandler.Create)
		api.GET("/reservations/:code", reservationHandler.GetByCode)

		// Live watchers of a business on this instance (admin only)
		api.GET("/businesses/:id/watchers", middleware.RequireAdmin(), func(c *gin.Context) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil || id <= 0 {
				response.BadRequest(c, "invalid business id")
				return
			}
			response.OK(c, gin.H{"business_id": id, "watchers": hub.Watchers(id)})
		})
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws/businesses/:id", realtime.ServeWs(hub, authorizeWatch, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.Int("reservation_duration_min", resolver.Duration()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv("LOG_LEVEL") == "debug" {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, _ := config.Build()
	return logger
}
