package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcpl-automation/coilprint-backend/api/controllers"
	"github.com/mcpl-automation/coilprint-backend/api/routes"
	"github.com/mcpl-automation/coilprint-backend/internal/assignments"
	"github.com/mcpl-automation/coilprint-backend/internal/auditlog"
	"github.com/mcpl-automation/coilprint-backend/internal/ordersync"
	"github.com/mcpl-automation/coilprint-backend/internal/printer"
	"github.com/mcpl-automation/coilprint-backend/internal/reprint"
	"github.com/mcpl-automation/coilprint-backend/internal/workorders"
	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
	"github.com/mcpl-automation/coilprint-backend/pkg/migrate"
	"github.com/mcpl-automation/coilprint-backend/pkg/redis"
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

	cfg.Service.Kind = "api"

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

	// Redis only backs the sync-worker lock and readiness reporting, so the
	// dashboard stays up when it is absent.
	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Warn(context.Background(), "redis unavailable, readiness will report it: "+err.Error())
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	workOrderRepo := workorders.NewRepository(dbClient.DB())
	auditRepo := auditlog.NewRepository(dbClient.DB())

	assignmentService, err := assignments.NewService(
		assignments.NewRepository(dbClient.DB()),
		workOrderRepo,
		auditRepo,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	transport, err := printer.NewTransport(cfg.Printer)
	if err != nil {
		logg.Error(context.Background(), "failed to create printer transport", err)
		os.Exit(1)
	}

	reprintService, err := reprint.NewService(auditRepo, transport)
	if err != nil {
		logg.Error(context.Background(), "failed to create reprint service", err)
		os.Exit(1)
	}

	var syncer controllers.OrderSyncer
	if cfg.NetSuite.Configured() {
		syncer, err = buildOrderSyncer(cfg, logg, workOrderRepo)
		if err != nil {
			logg.Error(context.Background(), "failed to create order syncer", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "netsuite integration not configured, manual sync disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

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
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Assignments: assignmentService,
			AuditLog:    auditRepo,
			RawLog:      auditlog.NewRawLogRepository(dbClient.DB(), logg),
			WorkOrders:  workOrderRepo,
			Reprint:     reprintService,
			OrderSyncer: syncer,
			Registry:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildOrderSyncer(cfg *config.Config, logg *logger.Logger, repo *workorders.Repository) (*ordersync.Service, error) {
	tokens, err := ordersync.NewTokenSource(cfg.NetSuite, nil, "")
	if err != nil {
		return nil, err
	}
	client, err := ordersync.NewClient(cfg.NetSuite, tokens, nil, "")
	if err != nil {
		return nil, err
	}
	return ordersync.NewService(client, repo, logg, cfg.NetSuite.CreatedAtMin)
}
