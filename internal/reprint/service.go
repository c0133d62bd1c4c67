package reprint

import (
	"context"
	"fmt"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
)

type auditReader interface {
	BySerial(ctx context.Context, serial string) (*models.PrintLog, error)
	LatestForMachine(ctx context.Context, machineID int) (*models.PrintLog, error)
}

type documentSender interface {
	Send(ctx context.Context, document []byte) (bool, string)
}

// Result reports one reprint attempt.
type Result struct {
	SerialNumber string `json:"serial_number"`
	MachineID    int    `json:"machine_id"`
	WorkOrderNo  string `json:"work_order_no"`
	Sent         bool   `json:"sent"`
	ErrorDetail  string `json:"error_detail,omitempty"`
}

// Service resends a historically printed label from the audit trail. It
// needs no pipeline state: the stored document goes straight back to the
// print transport.
type Service struct {
	audit  auditReader
	sender documentSender
}

func NewService(audit auditReader, sender documentSender) (*Service, error) {
	if audit == nil {
		return nil, fmt.Errorf("audit reader required")
	}
	if sender == nil {
		return nil, fmt.Errorf("document sender required")
	}
	return &Service{audit: audit, sender: sender}, nil
}

// BySerial resends the label with the exact serial number.
func (s *Service) BySerial(ctx context.Context, serial string) (*Result, error) {
	if serial == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serial number is required")
	}
	entry, err := s.audit.BySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no audit record for serial %s", serial))
	}
	return s.resend(ctx, entry)
}

// LatestForMachine resends the machine's most recent label.
func (s *Service) LatestForMachine(ctx context.Context, machineID int) (*Result, error) {
	if machineID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "machine_id must be a positive integer")
	}
	entry, err := s.audit.LatestForMachine(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no audit records for machine %d", machineID))
	}
	return s.resend(ctx, entry)
}

func (s *Service) resend(ctx context.Context, entry *models.PrintLog) (*Result, error) {
	if entry.ZPLContent == nil || *entry.ZPLContent == "" {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("audit record %s has no stored document", entry.SerialNumber))
	}

	ok, detail := s.sender.Send(ctx, []byte(*entry.ZPLContent))
	return &Result{
		SerialNumber: entry.SerialNumber,
		MachineID:    entry.MachineID,
		WorkOrderNo:  entry.WorkOrderNo,
		Sent:         ok,
		ErrorDetail:  detail,
	}, nil
}
