package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dispatch-service/internal/config"
	"dispatch-service/internal/infrastructure/cron"
	infradb "dispatch-service/internal/infrastructure/db"
	"dispatch-service/internal/infrastructure/email"
	"dispatch-service/internal/infrastructure/events"
	"dispatch-service/internal/infrastructure/gateway"
	infrakafka "dispatch-service/internal/infrastructure/kafka"
	"dispatch-service/internal/infrastructure/memory"
	"dispatch-service/internal/infrastructure/postgres"
	infraredis "dispatch-service/internal/infrastructure/redis"
	"dispatch-service/internal/logging"
	transporthttp "dispatch-service/internal/transport/http"
	transportkafka "dispatch-service/internal/transport/kafka"
	"dispatch-service/internal/transport/queue"
)

const (
	storageModePostgres = "postgres"
	storageModeMemory   = "memory"

	mockEmailFailureRate   = 0.05
	mockGatewayDeclineRate = 0.10
	shutdownTimeout        = 15 * time.Second
)

// App represents the running service: the application core plus every
// configured transport and its connections.
type App struct {
	config *config.Config
	logger *zap.Logger

	httpServer    *transporthttp.Server
	kafkaConsumer *transportkafka.Consumer
	queueConsumer *queue.Consumer
	reconciler    *cron.Reconciler

	pool        *pgxpool.Pool
	redisClient *redis.Client
	producer    *infrakafka.Producer
}

// New creates a new application
func New() (*App, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	logger.Info("configuration loaded",
		zap.String("service", cfg.Service.Name),
		zap.String("environment", cfg.Service.Environment),
		zap.String("storage_mode", cfg.Storage.Mode),
	)

	a := &App{config: cfg, logger: logger}

	mode := cfg.Storage.Mode
	if mode == "" {
		mode = storageModePostgres
	}

	var ports Ports
	var ready transporthttp.ReadinessCheck

	switch mode {
	case storageModeMemory:
		// In-memory repositories with mock providers; no brokers.
		ports = Ports{
			Users:         memory.NewUserRepository(),
			Payments:      memory.NewPaymentRepository(),
			Notifications: memory.NewNotificationRepository(),
			Publisher:     events.NewPublisher(events.NewLogWriter(logger), nil, logger),
			Email:         email.NewMockService(mockEmailFailureRate, logger),
			Gateway:       gateway.NewMockGateway(mockGatewayDeclineRate),
		}
		logger.Info("using in-memory storage with mock providers")

	case storageModePostgres:
		ctx := context.Background()

		pool, err := infradb.NewPostgresPool(ctx, cfg.Database.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.pool = pool
		logger.Info("connected to PostgreSQL")

		redisClient, err := infraredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.redisClient = redisClient
		logger.Info("connected to Redis")

		producer := infrakafka.NewProducer(cfg.Kafka.Brokers, logger)
		a.producer = producer
		logger.Info("kafka producer initialized")

		mirror := infraredis.NewStreamPublisher(redisClient, cfg.Events.StreamMaxLen)
		publisher := events.NewPublisher(producer, mirror, logger)

		ports = Ports{
			Users:         postgres.NewUserRepository(pool),
			Payments:      postgres.NewPaymentRepository(pool),
			Notifications: postgres.NewNotificationRepository(pool),
			Publisher:     publisher,
			Email:         email.NewSMTPService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger),
			Gateway:       gateway.NewHTTPGateway(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.Timeout),
		}
		ready = func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}

	default:
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}

	application := NewApplication(logger, ports)

	router := transporthttp.NewRouter(application, ready, cfg.Service.Name, cfg.Service.Version, logger)
	a.httpServer = transporthttp.NewServer(logger, cfg.HTTP.GetAddr(), router.Setup())

	if mode == storageModePostgres {
		dedup := infraredis.NewDedupStore(a.redisClient, cfg.Dedup.Prefix, cfg.Dedup.TTL)

		if len(cfg.Kafka.CommandTopics) > 0 {
			a.kafkaConsumer = transportkafka.NewConsumer(
				cfg.Kafka.Brokers,
				cfg.Kafka.GroupID,
				cfg.Kafka.CommandTopics,
				application,
				dedup,
				logger,
			)
		}

		if cfg.Queue.Stream != "" {
			a.queueConsumer = queue.NewConsumer(
				a.redisClient,
				cfg.Queue.Stream,
				cfg.Queue.Group,
				cfg.Queue.Consumer,
				cfg.Queue.Tasks,
				application,
				dedup,
				logger,
			)
		}
	}

	if cfg.Reconciler.Enabled {
		a.reconciler = cron.NewReconciler(
			ports.Payments,
			ports.Notifications,
			ports.Publisher,
			cfg.Reconciler.Interval,
			cfg.Reconciler.StaleAfter,
			logger,
		)
	}

	return a, nil
}

// Run starts the application
func (a *App) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http server error", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	if a.kafkaConsumer != nil {
		go func() {
			if err := a.kafkaConsumer.Start(consumerCtx); err != nil {
				a.logger.Error("kafka consumer error", zap.Error(err))
			}
		}()
	}

	if a.queueConsumer != nil {
		go func() {
			if err := a.queueConsumer.Start(consumerCtx); err != nil {
				a.logger.Error("queue consumer error", zap.Error(err))
			}
		}()
	}

	if a.reconciler != nil {
		if err := a.reconciler.Start(); err != nil {
			return fmt.Errorf("failed to start reconciler: %w", err)
		}
	}

	a.logger.Info("service started", zap.String("addr", a.config.HTTP.GetAddr()))

	// Wait for interrupt signal
	<-quit
	a.logger.Info("shutting down")

	stopConsumers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", zap.Error(err))
	}

	if a.reconciler != nil {
		a.reconciler.Stop()
	}

	if a.kafkaConsumer != nil {
		if err := a.kafkaConsumer.Close(); err != nil {
			a.logger.Error("error closing kafka consumer", zap.Error(err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("error closing kafka producer", zap.Error(err))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("error closing redis client", zap.Error(err))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("shutdown complete")
	_ = a.logger.Sync()
	return nil
}
