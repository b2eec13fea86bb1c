package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/luisocampo/nichesmith-backend/api/routes"
	"github.com/luisocampo/nichesmith-backend/internal/ai"
	"github.com/luisocampo/nichesmith-backend/internal/checkout"
	"github.com/luisocampo/nichesmith-backend/internal/plans"
	"github.com/luisocampo/nichesmith-backend/internal/profiles"
	stripewebhook "github.com/luisocampo/nichesmith-backend/internal/webhooks/stripe"
	"github.com/luisocampo/nichesmith-backend/pkg/config"
	"github.com/luisocampo/nichesmith-backend/pkg/db"
	"github.com/luisocampo/nichesmith-backend/pkg/gemini"
	"github.com/luisocampo/nichesmith-backend/pkg/identity"
	"github.com/luisocampo/nichesmith-backend/pkg/logger"
	"github.com/luisocampo/nichesmith-backend/pkg/metrics"
	"github.com/luisocampo/nichesmith-backend/pkg/migrate"
	"github.com/luisocampo/nichesmith-backend/pkg/pubsub"
	"github.com/luisocampo/nichesmith-backend/pkg/redis"
	pkgstripe "github.com/luisocampo/nichesmith-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	geminiClient, err := gemini.NewClient(context.Background(), cfg.Gemini, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gemini", err)
		os.Exit(1)
	}

	identityClient, err := identity.NewClient(context.Background(), cfg.Identity, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap identity client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	aiMetrics := metrics.NewAIMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	profileRepo := profiles.NewRepository(dbClient.DB())
	planRepo := plans.NewRepository(dbClient.DB())

	planMapper, err := plans.NewMapper(planRepo, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create plan mapper", err)
		os.Exit(1)
	}

	webhookParams := stripewebhook.ServiceParams{
		Profiles: profileRepo,
		Plans:    planMapper,
		Logger:   logg,
		Metrics:  webhookMetrics,
	}
	if cfg.Feature.PubSubEnabled && cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		webhookParams.Publisher = pubsubClient
	}

	webhookService, err := stripewebhook.NewService(webhookParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Profiles:   profileRepo,
		Plans:      planRepo,
		Stripe:     checkout.NewStripeClient(stripeClient),
		SuccessURL: stripeClient.SuccessURL(),
		CancelURL:  stripeClient.CancelURL(),
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	aiService, err := ai.NewService(ai.ServiceParams{
		Gemini:  geminiClient,
		Models:  cfg.Gemini,
		Logger:  logg,
		Metrics: aiMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ai service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			dbClient,
			redisClient,
			identityClient,
			stripeClient,
			webhookService,
			checkoutService,
			profileRepo,
			planRepo,
			aiService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
