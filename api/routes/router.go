package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpl-automation/coilprint-backend/api/controllers"
	"github.com/mcpl-automation/coilprint-backend/api/middleware"
	"github.com/mcpl-automation/coilprint-backend/internal/assignments"
	"github.com/mcpl-automation/coilprint-backend/internal/auditlog"
	"github.com/mcpl-automation/coilprint-backend/internal/reprint"
	"github.com/mcpl-automation/coilprint-backend/internal/workorders"
	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
	"github.com/mcpl-automation/coilprint-backend/pkg/redis"
)

// Params carry the wired services the HTTP surface exposes.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Assignments assignments.Service
	AuditLog    *auditlog.Repository
	RawLog      *auditlog.RawLogRepository
	WorkOrders  *workorders.Repository
	Reprint     *reprint.Service
	OrderSyncer controllers.OrderSyncer
	Registry    *prometheus.Registry
}

// NewRouter assembles the operator dashboard API.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	var redisPinger interface {
		Ping(ctx context.Context) error
	}
	if p.Redis != nil {
		redisPinger = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, redisPinger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", controllers.Dashboard(p.Assignments, p.Logger))
		r.Put("/machines/{machineID}/assignment", controllers.UpdateAssignment(p.Assignments, p.Logger))

		r.Get("/print-log", controllers.PrintLog(p.AuditLog, p.Logger))
		r.Get("/print-log/failed", controllers.FailedPrints(p.AuditLog, p.Logger))
		r.Get("/raw-events", controllers.RawEvents(p.RawLog, p.Logger))

		r.Get("/work-orders", controllers.WorkOrders(p.WorkOrders, p.Logger))
		r.Post("/work-orders/sync", controllers.TriggerOrderSync(p.OrderSyncer, p.Logger))

		r.Post("/reprint", controllers.Reprint(p.Reprint, p.Logger))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	return r
}
