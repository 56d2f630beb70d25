package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmarable/wavecrate-backend/api/routes"
	"github.com/dmarable/wavecrate-backend/internal/catalog"
	"github.com/dmarable/wavecrate-backend/internal/checkout"
	"github.com/dmarable/wavecrate-backend/internal/licenses"
	"github.com/dmarable/wavecrate-backend/internal/purchases"
	stripewebhook "github.com/dmarable/wavecrate-backend/internal/webhooks/stripe"
	"github.com/dmarable/wavecrate-backend/pkg/config"
	"github.com/dmarable/wavecrate-backend/pkg/db"
	"github.com/dmarable/wavecrate-backend/pkg/logger"
	"github.com/dmarable/wavecrate-backend/pkg/metrics"
	"github.com/dmarable/wavecrate-backend/pkg/migrate"
	"github.com/dmarable/wavecrate-backend/pkg/redis"
	"github.com/dmarable/wavecrate-backend/pkg/storage/gcs"
	stripeclient "github.com/dmarable/wavecrate-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "wavecrate"}).
			Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "wavecrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server exited with error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return err
	}

	stripeClient, err := stripeclient.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return err
	}

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	sampleRepo := catalog.NewRepository(dbClient.DB())
	licenseRepo := licenses.NewRepository(dbClient.DB())
	purchaseRepo := purchases.NewRepository(dbClient.DB())
	deadLetterRepo := stripewebhook.NewDeadLetterRepository(dbClient.DB())

	catalogSvc, err := catalog.NewService(sampleRepo, purchaseRepo, gcsClient, cfg.GCS.BucketName, cfg.GCS.DownloadURLExpiry)
	if err != nil {
		return err
	}
	licenseSvc, err := licenses.NewService(licenseRepo)
	if err != nil {
		return err
	}
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Samples:   sampleRepo,
		Licenses:  licenseRepo,
		Purchases: purchaseRepo,
		Stripe:    stripeClient,
		Metrics:   paymentMetrics,
	})
	if err != nil {
		return err
	}
	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Purchases:         purchaseRepo,
		DeadLetters:       deadLetterRepo,
		TransactionRunner: dbClient,
		Metrics:           paymentMetrics,
		Logger:            logg,
	})
	if err != nil {
		return err
	}
	guard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, "stripe_webhook")
	if err != nil {
		return err
	}

	router := routes.New(routes.Params{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Catalog:     catalogSvc,
		Licenses:    licenseSvc,
		Checkout:    checkoutSvc,
		Purchases:   purchaseRepo,
		Webhooks:    webhookSvc,
		Guard:       guard,
		DeadLetters: deadLetterRepo,
		Stripe:      stripeClient,
		Metrics:     paymentMetrics,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
