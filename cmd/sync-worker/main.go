package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcpl-automation/coilprint-backend/internal/cron"
	"github.com/mcpl-automation/coilprint-backend/internal/ordersync"
	"github.com/mcpl-automation/coilprint-backend/internal/workorders"
	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
	"github.com/mcpl-automation/coilprint-backend/pkg/metrics"
	"github.com/mcpl-automation/coilprint-backend/pkg/migrate"
	"github.com/mcpl-automation/coilprint-backend/pkg/redis"
)

const lockKeyFormat = "coilprint:sync-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "sync-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if !cfg.NetSuite.Configured() {
		logg.Error(context.Background(), "netsuite integration not configured", fmt.Errorf("missing account, consumer key, certificate, or private key settings"))
		os.Exit(1)
	}

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

	tokens, err := ordersync.NewTokenSource(cfg.NetSuite, nil, "")
	if err != nil {
		logg.Error(context.Background(), "failed to create netsuite token source", err)
		os.Exit(1)
	}
	client, err := ordersync.NewClient(cfg.NetSuite, tokens, nil, "")
	if err != nil {
		logg.Error(context.Background(), "failed to create netsuite client", err)
		os.Exit(1)
	}
	syncService, err := ordersync.NewService(client, workorders.NewRepository(dbClient.DB()), logg, cfg.NetSuite.CreatedAtMin)
	if err != nil {
		logg.Error(context.Background(), "failed to create order sync service", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.OrderSync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(ordersync.NewJob(syncService)),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.OrderSync.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting sync worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sync worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
