package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/cohortly/cohortly/internal/api"
	v1 "github.com/cohortly/cohortly/internal/api/v1"
	"github.com/cohortly/cohortly/internal/cache"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/domain/account"
	"github.com/cohortly/cohortly/internal/integration/razorpay"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/metrics"
	repo "github.com/cohortly/cohortly/internal/repository/mongo"
	"github.com/cohortly/cohortly/internal/service"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.GetLogger().Fatalw("failed to load configuration", "error", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		logger.GetLogger().Fatalw("failed to initialize logger", "error", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			TracesSampleRate: cfg.Sentry.SampleRate,
		}); err != nil {
			log.Warnw("sentry initialization failed, continuing without it", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	store, err := repo.NewStore(cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to mongodb", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalw("failed to create indexes", "error", err)
	}

	appCache := cache.NewInMemoryCache(cfg, log)
	accountRepo := account.NewCachedRepository(
		repo.NewAccountRepository(store), appCache, cfg.Cache.TTL, log)

	params := service.ServiceParams{
		Logger:         log,
		Config:         cfg,
		DB:             store,
		AccountRepo:    accountRepo,
		PlanRepo:       repo.NewPlanRepository(store),
		CohortRepo:     repo.NewCohortRepository(store),
		EnrollmentRepo: repo.NewEnrollmentRepository(store),
		PaymentRepo:    repo.NewPaymentRepository(store),
		Gateway:        razorpay.NewClient(cfg, log),
	}

	checkoutService := service.NewCheckoutService(params)
	reconciliationService := service.NewReconciliationService(params)
	entitlementService := service.NewEntitlementService(params)

	router := api.NewRouter(api.Handlers{
		Checkout:    v1.NewCheckoutHandler(checkoutService, log),
		Webhook:     v1.NewWebhookHandler(razorpay.NewVerifier(cfg, log), reconciliationService, log),
		Entitlement: v1.NewEntitlementHandler(entitlementService, params.PlanRepo, params.CohortRepo, log),
		Health:      v1.NewHealthHandler(store),
	}, cfg, log)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go runExpirySweep(ctx, cfg, entitlementService, log)

	go func() {
		log.Infow("starting server", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Errorw("store close failed", "error", err)
	}

	log.Infow("shutdown complete")
}

// runExpirySweep periodically flips overdue subscriptions to expired so the
// active flag stays honest between payments.
func runExpirySweep(ctx context.Context, cfg *config.Configuration, svc service.EntitlementService, log *logger.Logger) {
	ticker := time.NewTicker(cfg.Subscription.ExpirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.ExpireOverdueSubscriptions(ctx)
			if err != nil {
				log.Errorw("subscription expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				metrics.SubscriptionsExpired.Add(float64(n))
			}
		}
	}
}
