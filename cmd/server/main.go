package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flappyjet-backend/internal/config"
	"github.com/flappyjet-backend/internal/domain"
	"github.com/flappyjet-backend/internal/handler"
	"github.com/flappyjet-backend/internal/kafka"
	"github.com/flappyjet-backend/internal/postgres"
	"github.com/flappyjet-backend/internal/purchase"
	"github.com/flappyjet-backend/internal/redis"
	"github.com/flappyjet-backend/internal/service"
	"github.com/flappyjet-backend/internal/websocket"
	"github.com/flappyjet-backend/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	redisStore, err := redis.NewLeaderboardStore(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisStore.Close()
	logger.Info("connected to Redis")

	// Initialize PostgreSQL
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	repo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := repo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize the game service
	validator := purchase.NewValidator(&cfg.Purchase, logger)
	gameService := service.NewGameService(
		redisStore,
		repo,
		validator,
		domain.DefaultCatalog(),
		&cfg.Leaderboard,
		&cfg.AntiCheat,
		logger,
	)
	gameService.SetHub(wsHub)

	// Initialize rollover worker
	rolloverWorker := worker.NewRolloverWorker(
		redisStore,
		repo,
		&cfg.Rollover,
		logger,
	)

	// Rebuild Redis from the database on startup (recovery)
	logger.Info("seeding leaderboards from database")
	if err := rolloverWorker.SeedFromDatabase(ctx); err != nil {
		logger.Warn("failed to seed from database on startup", "error", err)
	}

	// Start rollover worker
	if cfg.Rollover.Enabled {
		if err := rolloverWorker.Start(ctx); err != nil {
			logger.Error("failed to start rollover worker", "error", err)
			os.Exit(1)
		}
	}

	// Initialize the analytics pipeline
	var analyticsProducer *kafka.Producer
	var analyticsConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing analytics pipeline",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		analyticsProducer, err = kafka.NewProducer(&cfg.Kafka, logger)
		if err != nil {
			logger.Warn("failed to create analytics producer, writing events directly", "error", err)
		} else {
			gameService.SetAnalyticsPublisher(analyticsProducer)
		}

		analyticsConsumer, err = kafka.NewConsumer(&cfg.Kafka, repo, logger)
		if err != nil {
			logger.Warn("failed to create analytics consumer, continuing without it", "error", err)
		} else if err := analyticsConsumer.Start(); err != nil {
			logger.Warn("failed to start analytics consumer, continuing without it", "error", err)
			analyticsConsumer = nil
		} else {
			logger.Info("analytics consumer started")
		}
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(gameService, wsHub, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop the analytics pipeline
	if analyticsConsumer != nil {
		if err := analyticsConsumer.Stop(); err != nil {
			logger.Error("failed to stop analytics consumer", "error", err)
		}
	}
	if analyticsProducer != nil {
		if err := analyticsProducer.Close(); err != nil {
			logger.Error("failed to close analytics producer", "error", err)
		}
	}

	// Stop rollover worker
	if err := rolloverWorker.Stop(); err != nil {
		logger.Error("failed to stop rollover worker", "error", err)
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
