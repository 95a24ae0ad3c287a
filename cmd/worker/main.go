package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/bizdir/pkg/app"
	"github.com/ghuser/bizdir/pkg/cache"
	"github.com/ghuser/bizdir/pkg/config"
	"github.com/ghuser/bizdir/pkg/database"
	"github.com/ghuser/bizdir/pkg/events"
	"github.com/ghuser/bizdir/pkg/logger"
	"github.com/ghuser/bizdir/pkg/telemetry"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
	menuEvents "github.com/ghuser/bizdir/services/menu/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(pool.DB(), events.OptionsFromConfig(cfg, false), log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	a := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	if err := registerSubscribers(ctx, a); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	<-ctx.Done()
	log.Info("shutting down worker...")

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	svcs, err := appsvcs.New(a)
	if err != nil {
		return err
	}

	topics := menuEvents.Topics()
	errCh, err := a.EventBus.Subscribe(ctx, topics, handleBucketChanged(a, svcs.Menu))
	if err != nil {
		return err
	}

	// Drain subscriber errors in background so the channel never blocks.
	go func() {
		for err := range errCh {
			a.Logger.ErrorContext(ctx, "subscriber error", "error", err)
		}
	}()

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleBucketChanged re-warms the Redis listing of every bucket an event
// names. Warming is idempotent, so redelivered events are harmless.
func handleBucketChanged(a *app.Application, menu *appsvcs.MenuService) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt menuEvents.BucketChangedEvent
		if err := events.Decode(msg, &evt); err != nil {
			return err
		}

		for _, bucket := range evt.Buckets {
			if err := menu.WarmBucket(ctx, bucket); err != nil {
				// Best-effort: the API falls back to Postgres on a miss.
				a.Logger.WarnContext(ctx, "bucket warm failed",
					"bucket", bucket, "event_id", evt.EventID, "error", err)
				continue
			}
			a.Logger.InfoContext(ctx, "bucket warmed", "bucket", bucket, "event_id", evt.EventID)
		}
		return nil
	}
}
