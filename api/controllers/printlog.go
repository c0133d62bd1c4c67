package controllers

import (
	"net/http"
	"strconv"

	"github.com/mcpl-automation/coilprint-backend/api/responses"
	"github.com/mcpl-automation/coilprint-backend/internal/auditlog"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// PrintLog returns the newest audit records.
func PrintLog(repo *auditlog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := repo.Recent(r.Context(), limitParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// FailedPrints returns the newest FAILED audit records for recovery.
func FailedPrints(repo *auditlog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := repo.RecentFailed(r.Context(), limitParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// RawEvents returns the newest raw broker messages for debugging.
func RawEvents(repo *auditlog.RawLogRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := repo.Recent(r.Context(), limitParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}
