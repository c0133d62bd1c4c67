package middleware

import (
	"fmt"
	"net/http"

	"github.com/mcpl-automation/coilprint-backend/api/responses"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

// Recoverer converts handler panics into a 500 envelope. The dashboard runs
// unattended on the plant floor, so a panicking handler must never take the
// server down with it.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic": rec,
						"path":  r.URL.Path,
					})
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
