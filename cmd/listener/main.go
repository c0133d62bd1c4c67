package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpl-automation/coilprint-backend/internal/assignments"
	"github.com/mcpl-automation/coilprint-backend/internal/auditlog"
	"github.com/mcpl-automation/coilprint-backend/internal/label"
	"github.com/mcpl-automation/coilprint-backend/internal/pipeline"
	"github.com/mcpl-automation/coilprint-backend/internal/printer"
	"github.com/mcpl-automation/coilprint-backend/internal/sequence"
	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
	"github.com/mcpl-automation/coilprint-backend/pkg/metrics"
	"github.com/mcpl-automation/coilprint-backend/pkg/migrate"
	"github.com/mcpl-automation/coilprint-backend/pkg/mqtt"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "listener"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "listener"

	logg = logger.New(logger.Options{
		ServiceName: "listener",
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

	allocator, err := sequence.NewAllocator(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create serial allocator", err)
		os.Exit(1)
	}

	transport, err := printer.NewTransport(cfg.Printer)
	if err != nil {
		logg.Error(context.Background(), "failed to create printer transport", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	service, err := pipeline.NewService(
		logg,
		assignments.NewRepository(dbClient.DB()),
		allocator,
		label.NewCompositor(cfg.App.PlantCode, nil),
		transport,
		auditlog.NewRepository(dbClient.DB()),
		auditlog.NewRawLogRepository(dbClient.DB(), logg),
		pipelineMetrics,
		cfg.Pipeline.ShutdownGrace,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create print pipeline", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	broker, err := mqtt.NewClient(ctx, cfg.MQTT, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to mqtt broker", err)
		os.Exit(1)
	}

	if err := broker.Subscribe(ctx, service.Handle); err != nil {
		broker.Close()
		logg.Error(ctx, "failed to subscribe to telemetry topics", err)
		os.Exit(1)
	}

	go serveMetrics(ctx, cfg, logg, registry)

	logg.Info(ctx, "listener started")
	<-ctx.Done()

	// Stop new deliveries first, then let in-flight coils finish printing.
	broker.Close()

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.ShutdownGrace+5*time.Second)
	defer cancel()
	if err := service.Shutdown(drainCtx); err != nil {
		logg.Error(drainCtx, "pipeline drain incomplete", err)
		os.Exit(1)
	}

	logg.Info(context.Background(), "listener shutting down gracefully")
}

func serveMetrics(ctx context.Context, cfg *config.Config, logg *logger.Logger, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: ":" + cfg.App.Port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Warn(ctx, "metrics endpoint stopped: "+err.Error())
	}
}
