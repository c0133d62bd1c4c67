package controllers

import (
	"net/http"

	"github.com/mcpl-automation/coilprint-backend/api/responses"
	"github.com/mcpl-automation/coilprint-backend/api/validators"
	"github.com/mcpl-automation/coilprint-backend/internal/reprint"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

// reprintRequest targets a historical label either by exact serial or by
// the machine's most recent print.
type reprintRequest struct {
	SerialNumber string `json:"serial_number" validate:"omitempty,max=64"`
	MachineID    int    `json:"machine_id" validate:"gte=0"`
}

// Reprint resends the stored label document through the print transport.
func Reprint(service *reprint.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reprintRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var result *reprint.Result
		var err error
		switch {
		case req.SerialNumber != "":
			result, err = service.BySerial(r.Context(), req.SerialNumber)
		case req.MachineID > 0:
			result, err = service.LatestForMachine(r.Context(), req.MachineID)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "serial_number or machine_id is required")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
