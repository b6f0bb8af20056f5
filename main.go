package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"usermanager/internal/config"
	"usermanager/internal/database"
	"usermanager/internal/logging"
	"usermanager/internal/models"
	"usermanager/internal/repositories"
	"usermanager/internal/server"
	"usermanager/internal/services"
	"usermanager/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("user service: %v", err)
	}
}

func run() error {
	// --- Configuration ---
	// A missing JWT_SECRET stops the process here, before anything listens.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	tokenService, err := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return err
	}

	// --- User store ---
	userRepo, closeStore, err := openUserRepository(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Lifecycle events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue, Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if cfg.RabbitMQ.ConsumeEvents {
			if err := mqClient.Consume(auditUserEvent(logger)); err != nil {
				return fmt.Errorf("failed to start user event consumer: %w", err)
			}
			logger.Info("consuming user events", zap.String("queue", cfg.RabbitMQ.Queue))
		}
	} else {
		logger.Info("RABBITMQ_URL not set, user events disabled")
	}

	// --- Services ---
	hasher := services.NewBcryptHasher(cfg.Hashing.Cost, cfg.Hashing.Workers)
	userService := services.NewUserService(userRepo, hasher, publisher, logger)
	authService := services.NewAuthService(userRepo, hasher)

	app := server.New(server.Deps{
		UserService:  userService,
		AuthService:  authService,
		TokenService: tokenService,
		Logger:       logger,
		RequestLog:   true,
	})

	// --- Start HTTP Server ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.AppPort))
		errCh <- app.Listen(cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("error during Fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
	return nil
}

// openUserRepository returns the configured store and a function releasing
// its resources.
func openUserRepository(cfg config.DatabaseConfig, logger *zap.Logger) (repositories.UserRepository, func(), error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory user store, data is lost on restart")
		return repositories.NewMemoryUserRepository(), func() {}, nil
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}
	return repositories.NewGORMUserRepository(db), closeDB, nil
}

// auditUserEvent writes each consumed lifecycle event to the log.
func auditUserEvent(logger *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event models.UserEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			logger.Warn("discarding malformed user event", zap.String("message_id", msg.MessageId), zap.Error(err))
			return err
		}
		logger.Info("user event",
			zap.String("type", event.Type),
			zap.Uint("user_id", event.UserID),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
