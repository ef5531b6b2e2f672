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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/arkicoffee/storefront-backend/api/routes"
	"github.com/arkicoffee/storefront-backend/internal/auth"
	"github.com/arkicoffee/storefront-backend/internal/blog"
	"github.com/arkicoffee/storefront-backend/internal/cart"
	"github.com/arkicoffee/storefront-backend/internal/catalog"
	"github.com/arkicoffee/storefront-backend/internal/checkout"
	"github.com/arkicoffee/storefront-backend/pkg/config"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/arkicoffee/storefront-backend/pkg/metrics"
	"github.com/arkicoffee/storefront-backend/pkg/redis"
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

	catalogRepo, err := catalog.NewRepository(cfg.Catalog.DataDir)
	if err != nil {
		logg.Error(context.Background(), "failed to load catalog", err)
		os.Exit(1)
	}
	blogRepo, err := blog.NewRepository(cfg.Catalog.DataDir)
	if err != nil {
		logg.Error(context.Background(), "failed to load blog posts", err)
		os.Exit(1)
	}

	// Redis is optional: without it carts and accounts live in memory only,
	// which is fine for local development.
	var redisClient *redis.Client
	var cartPersister cart.Persister = cart.NewMemoryPersister()
	var accountStore auth.AccountStore = auth.NewMemoryAccountStore()
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		cartPersister, err = cart.NewRedisPersister(redisClient, cfg.Cart.SnapshotTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cart persister", err)
			os.Exit(1)
		}
		accountStore, err = auth.NewRedisAccountStore(redisClient, cfg.Auth.AccountTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create account store", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, carts and accounts are in-memory only")
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStorefrontMetrics(promRegistry)

	policy, err := cart.PolicyFromConfig(cfg.Cart)
	if err != nil {
		logg.Error(context.Background(), "invalid cart pricing config", err)
		os.Exit(1)
	}

	registry := cart.NewRegistry(cartPersister, logg, storeMetrics)

	authService, err := auth.NewService(accountStore, cfg.Password, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	checkoutService := checkout.NewService(policy, cfg.Checkout.SimulatedDelay, logg)

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

	var redisPinger redis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			Redis:        redisPinger,
			Catalog:      catalogRepo,
			Blog:         blogRepo,
			CartRegistry: registry,
			Policy:       policy,
			Auth:         authService,
			Checkout:     checkoutService,
			Metrics:      storeMetrics,
			PromRegistry: promRegistry,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			if err := server.Close(); err != nil {
				logg.Error(ctx, "forced close failed", err)
			}
		}
	}
}
