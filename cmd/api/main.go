package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pdv-backend/api/controllers"
	"github.com/angelmondragon/pdv-backend/api/routes"
	"github.com/angelmondragon/pdv-backend/internal/catalog"
	"github.com/angelmondragon/pdv-backend/internal/pos"
	"github.com/angelmondragon/pdv-backend/internal/sales"
	"github.com/angelmondragon/pdv-backend/internal/sequencer"
	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/db"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
	"github.com/angelmondragon/pdv-backend/pkg/metrics"
	"github.com/angelmondragon/pdv-backend/pkg/migrate"
	"github.com/angelmondragon/pdv-backend/pkg/outbox"
	"github.com/angelmondragon/pdv-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	health := map[string]controllers.Pinger{"database": dbClient}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		health["redis"] = redisClient
	}

	salesRepo, err := sales.NewRepository(dbClient.DB(), outbox.NewService(outbox.NewRepository(dbClient.DB()), logg))
	if err != nil {
		logg.Error(context.Background(), "failed to create sales repository", err)
		os.Exit(1)
	}

	seq, err := buildSequencer(context.Background(), cfg, logg, dbClient, redisClient, salesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create sale sequencer", err)
		os.Exit(1)
	}

	items, err := buildCatalog(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var metricsHandler http.Handler
	var posMetrics *metrics.POSMetrics
	if cfg.FeatureFlags.Metrics {
		posMetrics = metrics.NewPOSMetrics(promRegistry)
		metricsHandler = promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
	}

	terminals := pos.NewRegistry(pos.RegistryParams{
		Config:    cfg.POS,
		Sequencer: seq,
		Catalog:   items,
		Sales:     salesRepo,
		Logger:    logg,
		Metrics:   posMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  id,
		"sequencer": cfg.POS.SequencerBackend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, terminals, salesRepo, health, metricsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
	}
	if err := terminals.Close(); err != nil {
		logg.Error(ctx, "error closing terminals", err)
	}
	logg.Info(ctx, "api server stopped")
}

// buildSequencer picks the sale number source. The redis counter is seeded
// from the highest stored sale so a flushed cache cannot reissue numbers.
func buildSequencer(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, store *sales.Repository) (sequencer.Sequencer, error) {
	if !cfg.POS.UsesRedisSequencer() {
		return sequencer.NewSQL(dbClient.DB())
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis sequencer selected but %s is not configured", config.EnvRedisURL)
	}
	seq, err := sequencer.NewRedis(redisClient)
	if err != nil {
		return nil, err
	}
	floor, err := store.MaxSaleNumber(ctx)
	if err != nil {
		return nil, err
	}
	seeded, err := seq.Seed(ctx, floor)
	if err != nil {
		return nil, err
	}
	if seeded {
		logg.Info(logg.WithField(ctx, "floor", floor), "sale number counter seeded")
	}
	return seq, nil
}

func buildCatalog(cfg *config.Config, dbClient *db.Client) (catalog.Catalog, error) {
	if cfg.Catalog.Remote() {
		opts := []catalog.Option{catalog.WithTimeout(cfg.Catalog.Timeout)}
		if cfg.Catalog.Token != "" {
			opts = append(opts, catalog.WithBearerToken(cfg.Catalog.Token))
		}
		return catalog.NewClient(cfg.Catalog.BaseURL, opts...)
	}
	return catalog.NewRepository(dbClient.DB())
}
