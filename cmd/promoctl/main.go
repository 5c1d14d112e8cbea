package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"promotion-console/internal/codec"
	"promotion-console/internal/config"
	"promotion-console/internal/controller"
	"promotion-console/internal/kafka"
	"promotion-console/internal/logger"
	"promotion-console/internal/metrics"
	"promotion-console/internal/redis"
	"promotion-console/internal/services"
	"promotion-console/internal/session"

	"github.com/prometheus/client_golang/prometheus"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	loadConfig       = config.Load
	newLogger        = logger.New
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	producer *kafka.Producer
	registry *prometheus.Registry
	ctrl     *controller.Controller
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "promoctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// buildApplication создает все зависимости (подменяемые в тестах).
// sessionName переопределяет SESSION_NAME, если не пуст.
func buildApplication(ctx context.Context, sessionName string) (*application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if sessionName != "" {
		cfg.Session.Name = sessionName
	}
	log := newLogger(&cfg.Logger)

	app := &application{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m, err = metrics.New(cfg.Metrics.Namespace, app.registry)
		if err != nil {
			return nil, err
		}
	}

	var store controller.StateStore = session.NewMemoryStore()
	if cfg.Session.Backend == "redis" {
		app.redis, err = redisConnect(ctx, &cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		store = session.NewRedisStore(app.redis, cfg.Session.Name, cfg.Session.TTL())
	}

	var publisher controller.EventPublisher
	if cfg.Kafka.Enabled {
		app.producer, err = newKafkaProducer(&cfg.Kafka, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		publisher = app.producer
	}

	app.ctrl = controller.New(controller.Deps{
		Codec:      codec.New(),
		API:        services.NewPromotionClient(&cfg.API, log, m),
		Reconciler: services.NewResultReconciler(),
		Store:      store,
		Publisher:  publisher,
		Log:        log,
		Session:    cfg.Session.Name,
	})
	if err := app.ctrl.Restore(ctx); err != nil {
		log.WithError(err).Warn("Starting with an empty form")
	}

	log.WithField("session", cfg.Session.Name).WithField("base_url", cfg.API.BaseURL).Debug("Promotion console ready")
	return app, nil
}

// Close освобождает внешние подключения.
func (a *application) Close() {
	if a == nil {
		return
	}
	if err := a.producer.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Kafka producer")
	}
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Redis")
	}
}
