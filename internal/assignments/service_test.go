package assignments

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mcpl-automation/coilprint-backend/internal/auditlog"
	"github.com/mcpl-automation/coilprint-backend/internal/workorders"
	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000", filepath.Join(t.TempDir(), "assignments.db"))
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, nil)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(
		&models.WorkOrder{},
		&models.MachineAssignment{},
		&models.PrintLog{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return client
}

func seedMachine(t *testing.T, client *db.Client, machineID int) {
	t.Helper()
	row := models.MachineAssignment{
		MachineID:     machineID,
		EquipmentName: fmt.Sprintf("Autocoiler %d", machineID),
	}
	if err := client.DB().Create(&row).Error; err != nil {
		t.Fatalf("failed to seed machine %d: %v", machineID, err)
	}
}

func seedWorkOrder(t *testing.T, client *db.Client, number string) *models.WorkOrder {
	t.Helper()
	order := models.WorkOrder{
		WorkOrderNo:  number,
		MCPLPartCode: "MCPL-001",
		CustomerName: "Acme Wires",
		RawJSON:      "{}",
		WireType:     "FLRY-B 0.5 (16/0.2)",
	}
	if err := client.DB().Create(&order).Error; err != nil {
		t.Fatalf("failed to seed work order %s: %v", number, err)
	}
	return &order
}

func newTestService(t *testing.T, client *db.Client) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(client.DB()),
		workorders.NewRepository(client.DB()),
		auditlog.NewRepository(client.DB()),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRepositoryResolveInactiveMachine(t *testing.T) {
	client := newTestClient(t)
	seedMachine(t, client, 3)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	// Unknown machine, unbound machine, and paused machine all resolve to nil.
	if res, err := repo.Resolve(ctx, 99); err != nil || res != nil {
		t.Fatalf("unknown machine: res=%v err=%v", res, err)
	}
	if res, err := repo.Resolve(ctx, 3); err != nil || res != nil {
		t.Fatalf("unbound machine: res=%v err=%v", res, err)
	}

	order := seedWorkOrder(t, client, "WO-1001")
	if _, err := repo.Update(ctx, 3, &order.ID, false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res, err := repo.Resolve(ctx, 3); err != nil || res != nil {
		t.Fatalf("paused machine: res=%v err=%v", res, err)
	}
}

func TestRepositoryResolveActiveMachine(t *testing.T) {
	client := newTestClient(t)
	seedMachine(t, client, 2)
	order := seedWorkOrder(t, client, "WO-2002")
	repo := NewRepository(client.DB())
	ctx := context.Background()

	if _, err := repo.Update(ctx, 2, &order.ID, true); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := repo.Resolve(ctx, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res == nil || res.WorkOrder == nil {
		t.Fatalf("expected active assignment with preloaded order, got %+v", res)
	}
	if res.WorkOrder.WorkOrderNo != "WO-2002" {
		t.Fatalf("unexpected bound order: %s", res.WorkOrder.WorkOrderNo)
	}
}

func TestUpdateAssignmentUnknownWorkOrder(t *testing.T) {
	client := newTestClient(t)
	seedMachine(t, client, 1)
	svc := newTestService(t, client)

	number := "WO-MISSING"
	_, err := svc.UpdateAssignment(context.Background(), 1, UpdateInput{WorkOrderNo: &number, IsPrintingActive: true})
	if err == nil {
		t.Fatal("expected error for unknown work order")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestUpdateAssignmentActivateWithoutOrder(t *testing.T) {
	client := newTestClient(t)
	seedMachine(t, client, 1)
	svc := newTestService(t, client)

	_, err := svc.UpdateAssignment(context.Background(), 1, UpdateInput{IsPrintingActive: true})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestUpdateAssignmentBindAndActivate(t *testing.T) {
	client := newTestClient(t)
	seedMachine(t, client, 4)
	seedWorkOrder(t, client, "WO-3003")
	svc := newTestService(t, client)

	number := "WO-3003"
	row, err := svc.UpdateAssignment(context.Background(), 4, UpdateInput{WorkOrderNo: &number, IsPrintingActive: true})
	if err != nil {
		t.Fatalf("UpdateAssignment: %v", err)
	}
	if !row.IsPrintingActive {
		t.Fatal("expected printing to be active")
	}
	if row.WorkOrder == nil || row.WorkOrder.WorkOrderNo != "WO-3003" {
		t.Fatalf("unexpected bound order in dashboard row: %+v", row.WorkOrder)
	}
}

func TestUpdateAssignmentUnknownMachine(t *testing.T) {
	client := newTestClient(t)
	svc := newTestService(t, client)

	_, err := svc.UpdateAssignment(context.Background(), 42, UpdateInput{})
	if err == nil {
		t.Fatal("expected not found for unseeded machine")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestDashboardIncludesProductionSummary(t *testing.T) {
	client := newTestClient(t)
	seedMachine(t, client, 5)
	order := seedWorkOrder(t, client, "WO-4004")
	ctx := context.Background()

	repo := NewRepository(client.DB())
	if _, err := repo.Update(ctx, 5, &order.ID, true); err != nil {
		t.Fatalf("Update: %v", err)
	}

	audit := auditlog.NewRepository(client.DB())
	for i, length := range []float64{105.5, 98.25} {
		entry := &models.PrintLog{
			SerialNumber: fmt.Sprintf("250614-5-%04d", i+1),
			MachineID:    5,
			WorkOrderNo:  "WO-4004",
			ProductID:    "MCPL-001",
			ActualLength: length,
			DefectType:   "None",
			Status:       "SUCCESS",
		}
		if err := audit.Create(ctx, entry); err != nil {
			t.Fatalf("audit create: %v", err)
		}
	}

	svc := newTestService(t, client)
	rows, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one dashboard row, got %d", len(rows))
	}
	prod := rows[0].Production
	if prod.TotalCoilsProduced != 2 {
		t.Fatalf("expected 2 coils, got %d", prod.TotalCoilsProduced)
	}
	if prod.TotalQuantityMade.String() != "203.75" {
		t.Fatalf("unexpected total quantity: %s", prod.TotalQuantityMade)
	}
	if prod.RecentSerialNumber != "250614-5-0002" {
		t.Fatalf("unexpected recent serial: %s", prod.RecentSerialNumber)
	}
}
