package assignments

import (
	"context"
	"fmt"

	"github.com/mcpl-automation/coilprint-backend/internal/auditlog"
	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
	pkgerrors "github.com/mcpl-automation/coilprint-backend/pkg/errors"
)

// Service exposes the operator-facing assignment operations.
type Service interface {
	Dashboard(ctx context.Context) ([]DashboardRow, error)
	UpdateAssignment(ctx context.Context, machineID int, input UpdateInput) (*DashboardRow, error)
}

// UpdateInput is the validated operator request to rebind a machine.
type UpdateInput struct {
	WorkOrderNo      *string
	IsPrintingActive bool
}

// DashboardRow is one machine's line on the operator dashboard.
type DashboardRow struct {
	MachineID        int                        `json:"machine_id"`
	EquipmentName    string                     `json:"equipment_name"`
	IsPrintingActive bool                       `json:"is_printing_active"`
	WorkOrder        *WorkOrderDTO              `json:"work_order"`
	Production       auditlog.ProductionSummary `json:"production"`
}

// WorkOrderDTO is the dashboard view of a bound work order.
type WorkOrderDTO struct {
	WorkOrderNo      string `json:"work_order_no"`
	MCPLPartCode     string `json:"mcpl_part_code"`
	CustomerPartCode string `json:"customer_part_code"`
	CustomerName     string `json:"customer_name"`
	TotalQuantity    string `json:"total_quantity"`
	WireType         string `json:"wire_type"`
	Gauge            string `json:"gauge"`
	MainColor        string `json:"main_color"`
	BiColor          string `json:"bi_color"`
}

type orderLoader interface {
	FindByNumber(ctx context.Context, workOrderNo string) (*models.WorkOrder, error)
}

type productionSummarizer interface {
	Summary(ctx context.Context, workOrderNo string, machineID int) (auditlog.ProductionSummary, error)
}

type service struct {
	repo       *Repository
	orders     orderLoader
	summarizer productionSummarizer
}

// NewService constructs the assignment service.
func NewService(repo *Repository, orders orderLoader, summarizer productionSummarizer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("work order loader required")
	}
	if summarizer == nil {
		return nil, fmt.Errorf("production summarizer required")
	}
	return &service{repo: repo, orders: orders, summarizer: summarizer}, nil
}

// Dashboard returns every machine with its bound order and production totals.
func (s *service) Dashboard(ctx context.Context) ([]DashboardRow, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]DashboardRow, 0, len(assignments))
	for _, assignment := range assignments {
		row := DashboardRow{
			MachineID:        assignment.MachineID,
			EquipmentName:    assignment.EquipmentName,
			IsPrintingActive: assignment.IsPrintingActive,
			WorkOrder:        toWorkOrderDTO(assignment.WorkOrder),
		}
		if assignment.WorkOrder != nil {
			summary, err := s.summarizer.Summary(ctx, assignment.WorkOrder.WorkOrderNo, assignment.MachineID)
			if err != nil {
				return nil, err
			}
			row.Production = summary
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateAssignment rebinds a machine to a work order and sets its printing
// flag. Activating printing requires a bound order.
func (s *service) UpdateAssignment(ctx context.Context, machineID int, input UpdateInput) (*DashboardRow, error) {
	if machineID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "machine_id must be a positive integer")
	}

	var workOrderID *uint
	if input.WorkOrderNo != nil && *input.WorkOrderNo != "" {
		order, err := s.orders.FindByNumber(ctx, *input.WorkOrderNo)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("work order %s not found", *input.WorkOrderNo))
		}
		workOrderID = &order.ID
	}
	if input.IsPrintingActive && workOrderID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot activate printing without a work order")
	}

	updated, err := s.repo.Update(ctx, machineID, workOrderID, input.IsPrintingActive)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("machine %d not found", machineID))
	}

	rows, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].MachineID == machineID {
			return &rows[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "updated machine missing from dashboard")
}

func toWorkOrderDTO(order *models.WorkOrder) *WorkOrderDTO {
	if order == nil {
		return nil
	}
	return &WorkOrderDTO{
		WorkOrderNo:      order.WorkOrderNo,
		MCPLPartCode:     order.MCPLPartCode,
		CustomerPartCode: order.CustomerPartCode,
		CustomerName:     order.CustomerName,
		TotalQuantity:    order.TotalQuantity,
		WireType:         order.WireType,
		Gauge:            order.Gauge,
		MainColor:        order.MainColor,
		BiColor:          order.BiColor,
	}
}
