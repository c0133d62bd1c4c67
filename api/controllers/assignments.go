package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mcpl-automation/coilprint-backend/api/responses"
	"github.com/mcpl-automation/coilprint-backend/api/validators"
	"github.com/mcpl-automation/coilprint-backend/internal/assignments"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

// updateAssignmentRequest is the operator's rebind request. A null or empty
// work_order_no clears the binding.
type updateAssignmentRequest struct {
	WorkOrderNo      *string `json:"work_order_no" validate:"omitempty,max=64"`
	IsPrintingActive bool    `json:"is_printing_active"`
}

// Dashboard returns every machine with its bound order and production totals.
func Dashboard(service assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := service.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UpdateAssignment rebinds one machine and toggles its printing flag.
func UpdateAssignment(service assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machineID, err := strconv.Atoi(chi.URLParam(r, "machineID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "machine id must be an integer"))
			return
		}

		var req updateAssignmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := service.UpdateAssignment(r.Context(), machineID, assignments.UpdateInput{
			WorkOrderNo:      req.WorkOrderNo,
			IsPrintingActive: req.IsPrintingActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
