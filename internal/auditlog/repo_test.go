package auditlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	"github.com/mcpl-automation/coilprint-backend/pkg/enums"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000", filepath.Join(t.TempDir(), "auditlog.db"))
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, nil)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.PrintLog{}, &models.RawEvent{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return client
}

func newEntry(serial string, status enums.PrintStatus) *models.PrintLog {
	return &models.PrintLog{
		SerialNumber: serial,
		MachineID:    3,
		WorkOrderNo:  "WO-1001",
		ProductID:    "MCPL-001",
		ActualLength: 100,
		DefectType:   "None",
		EventPayload: `{"d":{}}`,
		Status:       status,
	}
}

func TestCreateRejectsDuplicateSerial(t *testing.T) {
	client := newTestClient(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	if err := repo.Create(ctx, newEntry("250614-3-0001", enums.PrintStatusSuccess)); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := repo.Create(ctx, newEntry("250614-3-0001", enums.PrintStatusSuccess))
	if !errors.Is(err, ErrDuplicateSerial) {
		t.Fatalf("expected ErrDuplicateSerial, got %v", err)
	}
}

func TestCreateRejectsInvalidStatus(t *testing.T) {
	client := newTestClient(t)
	repo := NewRepository(client.DB())

	entry := newEntry("250614-3-0002", enums.PrintStatus("MAYBE"))
	if err := repo.Create(context.Background(), entry); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestRecentFailedFiltersByStatus(t *testing.T) {
	client := newTestClient(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		status := enums.PrintStatusSuccess
		if i == 2 {
			status = enums.PrintStatusFailed
		}
		entry := newEntry(fmt.Sprintf("250614-3-%04d", i), status)
		if status == enums.PrintStatusFailed {
			msg := "connection refused"
			entry.ErrorMessage = &msg
		}
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	failed, err := repo.RecentFailed(ctx, 10)
	if err != nil {
		t.Fatalf("RecentFailed: %v", err)
	}
	if len(failed) != 1 || failed[0].SerialNumber != "250614-3-0002" {
		t.Fatalf("unexpected failed rows: %+v", failed)
	}
}

func TestBySerialAndLatestForMachine(t *testing.T) {
	client := newTestClient(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := repo.Create(ctx, newEntry(fmt.Sprintf("250614-3-%04d", i), enums.PrintStatusSuccess)); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	entry, err := repo.BySerial(ctx, "250614-3-0001")
	if err != nil || entry == nil {
		t.Fatalf("BySerial: entry=%v err=%v", entry, err)
	}

	if missing, err := repo.BySerial(ctx, "250614-9-9999"); err != nil || missing != nil {
		t.Fatalf("BySerial miss: entry=%v err=%v", missing, err)
	}

	latest, err := repo.LatestForMachine(ctx, 3)
	if err != nil || latest == nil {
		t.Fatalf("LatestForMachine: entry=%v err=%v", latest, err)
	}
	if latest.SerialNumber != "250614-3-0002" {
		t.Fatalf("unexpected latest serial: %s", latest.SerialNumber)
	}

	if none, err := repo.LatestForMachine(ctx, 7); err != nil || none != nil {
		t.Fatalf("LatestForMachine miss: entry=%v err=%v", none, err)
	}
}

func TestRawLogAppendAndRecent(t *testing.T) {
	client := newTestClient(t)
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	repo := NewRawLogRepository(client.DB(), logg)
	ctx := context.Background()

	repo.Append(ctx, "malhotra/Print_AutoCoiler1", []byte(`{"d":{"spark":[false]}}`))
	repo.Append(ctx, "malhotra/Print_AutoCoiler2", []byte(`{"d":{"spark":[true]}}`))

	events, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 raw events, got %d", len(events))
	}
	if events[0].Topic != "malhotra/Print_AutoCoiler2" {
		t.Fatalf("expected newest first, got %s", events[0].Topic)
	}
}

func TestRawLogAppendSwallowsFailure(t *testing.T) {
	client := newTestClient(t)
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	repo := NewRawLogRepository(client.DB(), logg)

	// Close the underlying connection so the insert fails; Append must not
	// panic or propagate the error.
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	repo.Append(context.Background(), "malhotra/Print_AutoCoiler1", []byte("{}"))
}
