package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/northfiber/fiberops-backend/api/routes"
	"github.com/northfiber/fiberops-backend/internal/auth"
	"github.com/northfiber/fiberops-backend/internal/campaigns"
	"github.com/northfiber/fiberops-backend/internal/customers"
	"github.com/northfiber/fiberops-backend/internal/geocode"
	"github.com/northfiber/fiberops-backend/internal/mailer"
	"github.com/northfiber/fiberops-backend/internal/marketing"
	"github.com/northfiber/fiberops-backend/internal/realtime"
	"github.com/northfiber/fiberops-backend/internal/users"
	"github.com/northfiber/fiberops-backend/pkg/auth/session"
	"github.com/northfiber/fiberops-backend/pkg/config"
	"github.com/northfiber/fiberops-backend/pkg/db"
	"github.com/northfiber/fiberops-backend/pkg/geocoder"
	"github.com/northfiber/fiberops-backend/pkg/instance"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/metrics"
	"github.com/northfiber/fiberops-backend/pkg/migrate"
	"github.com/northfiber/fiberops-backend/pkg/outbox"
	"github.com/northfiber/fiberops-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	userRepo := users.NewRepository(dbClient.DB())
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		AuthConfig:     cfg.Auth,
	})
	requireResource(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
		AuthConfig:     cfg.Auth,
	})
	requireResource(ctx, logg, "register service", err)

	opsMetrics := metrics.NewOpsMetrics(prometheus.DefaultRegisterer)

	customerRepo := customers.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	hub := realtime.NewHub(customerRepo, logg)

	customerService, err := customers.NewService(customerRepo, dbClient, outboxService, hub)
	requireResource(ctx, logg, "customer service", err)

	geoClient, err := geocoder.NewClient(cfg.Geocoder.APIKey,
		geocoder.WithBaseURL(cfg.Geocoder.BaseURL),
		geocoder.WithRegion(cfg.Geocoder.Region),
	)
	requireResource(ctx, logg, "geocoder client", err)

	geocodeService, err := geocode.NewService(customerRepo, geoClient, logg, opsMetrics,
		cfg.Geocoder.RequestStagger, cfg.Geocoder.RetryBackoff)
	requireResource(ctx, logg, "geocode service", err)

	mailService, err := mailer.NewService(mailer.NewRepository(dbClient.DB()), customerRepo, dbClient, outboxService, logg)
	requireResource(ctx, logg, "mail service", err)

	marketingRepo := marketing.NewRepository(dbClient.DB())
	marketingService, err := marketing.NewService(marketingRepo)
	requireResource(ctx, logg, "marketing service", err)

	campaignService, err := campaigns.NewService(campaigns.NewRepository(dbClient.DB()), marketingRepo)
	requireResource(ctx, logg, "campaign service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(runCtx, "starting api server")

	go hub.Run(runCtx)

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,
			AuthService:    authService,
			Register:       registerService,
			Customers:      customerService,
			Mail:           mailService,
			Geocode:        geocodeService,
			Campaigns:      campaignService,
			Marketing:      marketingService,
			Hub:            hub,
			Metrics:        promhttp.Handler(),
		}),
	}

	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "api server shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
