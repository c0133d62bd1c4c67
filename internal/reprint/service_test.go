package reprint

import (
	"context"
	"testing"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
)

type stubAudit struct {
	bySerial  *models.PrintLog
	byMachine *models.PrintLog
}

func (s *stubAudit) BySerial(ctx context.Context, serial string) (*models.PrintLog, error) {
	return s.bySerial, nil
}

func (s *stubAudit) LatestForMachine(ctx context.Context, machineID int) (*models.PrintLog, error) {
	return s.byMachine, nil
}

type stubSender struct {
	ok     bool
	detail string
	sent   []byte
}

func (s *stubSender) Send(ctx context.Context, document []byte) (bool, string) {
	s.sent = document
	return s.ok, s.detail
}

func entryWithDocument(serial string) *models.PrintLog {
	doc := "^XA stored label ^XZ"
	return &models.PrintLog{
		SerialNumber: serial,
		MachineID:    3,
		WorkOrderNo:  "WO-1001",
		ZPLContent:   &doc,
	}
}

func TestBySerialResendsStoredDocument(t *testing.T) {
	sender := &stubSender{ok: true}
	svc, err := NewService(&stubAudit{bySerial: entryWithDocument("250614-3-0007")}, sender)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.BySerial(context.Background(), "250614-3-0007")
	if err != nil {
		t.Fatalf("BySerial: %v", err)
	}
	if !result.Sent || result.SerialNumber != "250614-3-0007" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if string(sender.sent) != "^XA stored label ^XZ" {
		t.Fatalf("unexpected document sent: %s", sender.sent)
	}
}

func TestBySerialNotFound(t *testing.T) {
	svc, err := NewService(&stubAudit{}, &stubSender{ok: true})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.BySerial(context.Background(), "250614-9-9999")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLatestForMachineWithoutDocument(t *testing.T) {
	entry := &models.PrintLog{SerialNumber: "250614-3-0001", MachineID: 3}
	svc, err := NewService(&stubAudit{byMachine: entry}, &stubSender{ok: true})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.LatestForMachine(context.Background(), 3)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for missing document, got %v", err)
	}
}

func TestLatestForMachineTransportFailure(t *testing.T) {
	sender := &stubSender{ok: false, detail: "connection refused"}
	svc, err := NewService(&stubAudit{byMachine: entryWithDocument("250614-3-0002")}, sender)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.LatestForMachine(context.Background(), 3)
	if err != nil {
		t.Fatalf("LatestForMachine: %v", err)
	}
	if result.Sent || result.ErrorDetail == "" {
		t.Fatalf("transport failure should be reported in the result: %+v", result)
	}
}

func TestInputValidation(t *testing.T) {
	svc, err := NewService(&stubAudit{}, &stubSender{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.BySerial(context.Background(), ""); pkgerrors.As(err) == nil {
		t.Fatal("empty serial should be rejected")
	}
	if _, err := svc.LatestForMachine(context.Background(), 0); pkgerrors.As(err) == nil {
		t.Fatal("non-positive machine id should be rejected")
	}
}
