package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/northfiber/fiberops-backend/internal/mailer"
	"github.com/northfiber/fiberops-backend/pkg/config"
	"github.com/northfiber/fiberops-backend/pkg/db"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/metrics"
	"github.com/northfiber/fiberops-backend/pkg/migrate"
	"github.com/northfiber/fiberops-backend/pkg/outbox"
	"github.com/northfiber/fiberops-backend/pkg/outbox/idempotency"
	"github.com/northfiber/fiberops-backend/pkg/pubsub"
	"github.com/northfiber/fiberops-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "mail-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "mail-worker"

	logg = logger.New(logger.Options{
		ServiceName: "mail-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	manager, err := idempotency.NewManager(redisClient, cfg.Outbox.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	opsMetrics := metrics.NewOpsMetrics(prometheus.DefaultRegisterer)

	worker, err := mailer.NewWorker(
		mailer.NewRepository(dbClient.DB()),
		mailer.NewRelayClient(cfg.MailRelay),
		pubsubClient.MailSubscription(),
		manager,
		outbox.NewDLQRepository(dbClient.DB()),
		logg,
		opsMetrics,
		cfg.MailRelay.CCList,
	)
	requireResource(ctx, logg, "mail worker", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
	})
	logg.Info(runCtx, "mail worker ready")

	if err := worker.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "mail worker not working", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "mail worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
