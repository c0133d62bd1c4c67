package controllers

import (
	"context"
	"net/http"

	"github.com/mcpl-automation/coilprint-backend/api/responses"
	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CoilPrint-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the dependencies the API actually needs. Optional
// dependencies (redis) report their state without failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP pinger, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CoilPrint-Env", cfg.App.Env)
		ctx := r.Context()

		checks := map[string]string{"database": "ok"}
		healthy := true

		if dbP == nil {
			checks["database"] = "not configured"
			healthy = false
		} else if err := dbP.Ping(ctx); err != nil {
			logg.Error(ctx, "database readiness check failed", err)
			checks["database"] = "unreachable"
			healthy = false
		}

		if redisP != nil {
			checks["redis"] = "ok"
			if err := redisP.Ping(ctx); err != nil {
				logg.Warn(ctx, "redis readiness check failed")
				checks["redis"] = "unreachable"
			}
		}

		status := http.StatusOK
		state := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}
