package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborpay/harborpay-backend/api/routes"
	"github.com/harborpay/harborpay-backend/internal/gateway"
	"github.com/harborpay/harborpay-backend/internal/registry"
	"github.com/harborpay/harborpay-backend/internal/storecredit"
	"github.com/harborpay/harborpay-backend/pkg/config"
	"github.com/harborpay/harborpay-backend/pkg/db"
	"github.com/harborpay/harborpay-backend/pkg/logger"
	"github.com/harborpay/harborpay-backend/pkg/metrics"
	"github.com/harborpay/harborpay-backend/pkg/migrate"
	pkgredis "github.com/harborpay/harborpay-backend/pkg/redis"
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

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registryService, err := registry.NewService(registry.ServiceParams{
		Repo:     registry.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Logger:   logg,
		Payments: cfg.Payments,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create registry service", err)
		os.Exit(1)
	}

	ledger, err := storecredit.NewLedger(storecredit.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create store credit ledger", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	dispatchMetrics := metrics.NewDispatchMetrics(promRegistry)

	table := gateway.DefaultTable(
		gateway.NewCardGatewayBuilder(cfg.Square, cfg.Payments.Currency, logg),
		gateway.NewStoreCreditGatewayBuilder(ledger),
	)
	dispatcher := gateway.NewDispatcher(gateway.NewFactory(table), dispatchMetrics, logg)

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
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Registry:   registryService,
			Dispatcher: dispatcher,
			Gatherer:   promRegistry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
