package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docchat-relay/internal/app"
	"docchat-relay/internal/cache"
	"docchat-relay/internal/config"
	"docchat-relay/internal/metrics"
	"docchat-relay/internal/model"
	mysqlClient "docchat-relay/internal/platform/mysql"
	"docchat-relay/internal/platform/postgrest"
	rabbitmqClient "docchat-relay/internal/platform/rabbitmq"
	redisClient "docchat-relay/internal/platform/redis"
	"docchat-relay/internal/repository"
	"docchat-relay/internal/webhook"
)

// TableStore is the read side of the documents table, whichever driver backs it.
type TableStore interface {
	ListDocuments(ctx context.Context) ([]model.DocumentRecord, error)
	Ping(ctx context.Context) error
}

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Webhook    *webhook.Client
	TableStore TableStore
	MySQL      *gorm.DB
	Redis      *redis.Client
	MQConn     *amqp.Connection

	ChatService     *app.ChatService
	UploadService   *app.UploadService
	DocumentService *app.DocumentService

	StartedAt time.Time

	closeLog func() error
}

// New loads configuration from file and environment, then builds the App.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, closeLog := config.SetupLogger(cfg.Log)
	a, err := Build(ctx, cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	a.closeLog = closeLog
	return a, nil
}

// Build wires every dependency from an already validated cfg. Redis and
// RabbitMQ are only dialed when configured; a configured one that cannot be
// reached fails startup.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		StartedAt: time.Now(),
	}

	a.Webhook = webhook.NewClient(webhook.Config{
		ChatURL:   cfg.Webhook.ChatURL,
		UploadURL: cfg.Webhook.UploadURL,
		Timeout:   time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
	}, webhook.WithMetrics(a.Metrics), webhook.WithLogger(logger.With("component", "webhook")))

	if err := a.openTableStore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	var docCache app.DocumentCache
	if cfg.RedisEnabled() {
		client, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Redis = client
		docCache = cache.NewDocumentCache(client, time.Duration(cfg.Redis.DocumentsTTLSeconds)*time.Second)
	}

	var publisher app.UploadEventPublisher
	if cfg.RabbitMQEnabled() {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.UploadEventQueue)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn = conn
		publisher = rabbitmqClient.NewUploadEventPublisher(conn, cfg.RabbitMQ.UploadEventQueue)
	}

	a.ChatService = app.NewChatService(a.Webhook, logger.With("component", "chat"))
	a.UploadService = app.NewUploadService(a.Webhook, publisher, logger.With("component", "upload"))
	a.DocumentService = app.NewDocumentService(a.TableStore, docCache, logger.With("component", "documents"))

	logger.Info("relay dependencies ready",
		"table_store", cfg.TableStore.Driver,
		"redis", cfg.RedisEnabled(),
		"rabbitmq", cfg.RabbitMQEnabled(),
		"auth", cfg.AuthEnabled(),
	)
	return a, nil
}

func (a *App) openTableStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.TableStore.Driver {
	case config.TableStoreMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), mysqlClient.DefaultPool())
		if err != nil {
			return err
		}
		a.MySQL = db
		a.TableStore = repository.NewDocumentRepository(db, cfg.TableStore.Table)
	default:
		a.TableStore = postgrest.New(postgrest.Config{
			URL:    cfg.TableStore.URL,
			APIKey: cfg.TableStore.APIKey,
			Table:  cfg.TableStore.Table,
		}, postgrest.WithMetrics(a.Metrics), postgrest.WithLogger(a.Logger.With("component", "postgrest")))
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		errs = append(errs, a.MQConn.Close())
	}
	if a.MySQL != nil {
		errs = append(errs, mysqlClient.Close(a.MySQL))
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}
