package controllers

import (
	"context"
	"net/http"

	"github.com/mcpl-automation/coilprint-backend/api/responses"
	"github.com/mcpl-automation/coilprint-backend/internal/workorders"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

// OrderSyncer triggers an on-demand refresh from the order system.
type OrderSyncer interface {
	Sync(ctx context.Context) (int, error)
}

// WorkOrders lists the cached work orders.
func WorkOrders(repo *workorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := repo.List(r.Context(), limitParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// TriggerOrderSync refreshes the cache from the order system on demand.
// Returns 503 when the integration is not configured.
func TriggerOrderSync(syncer OrderSyncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if syncer == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "order system integration is not configured"))
			return
		}
		saved, err := syncer.Sync(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order sync failed"))
			return
		}
		responses.WriteSuccess(w, map[string]int{"saved": saved})
	}
}
