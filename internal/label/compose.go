package label

import (
	"fmt"
	"time"

	"github.com/mcpl-automation/coilprint-backend/pkg/db/models"
)

// Placeholder fills any label field whose source data is absent. A physical
// label never carries a blank field.
const Placeholder = "N/A"

// Record is the fully composed, print-ready label. Transient: built per
// event, its fields flow into the audit row and its Document goes to the
// printer.
type Record struct {
	SerialNumber string
	MachineID    int
	WorkOrderNo  string
	ProductID    string
	CustomerPart string
	CustomerName string
	Description  string
	WireType     WireTypeFields
	Size         string
	SizeUOM      string
	Color        string
	LotNo        string
	ActualLength float64
	LengthUOM    string
	PONo         string
	OperatorName string
	PlantCode    string
	PrintDate    string
	DefectType   string
	Document     string
}

// Compositor builds label records. Pure: no I/O, deterministic for a fixed
// clock input.
type Compositor struct {
	plantCode string
	rules     []DefectRule
}

// NewCompositor configures composition for one plant. A nil rules slice
// selects the default defect taxonomy.
func NewCompositor(plantCode string, rules []DefectRule) *Compositor {
	if rules == nil {
		rules = DefaultDefectRules
	}
	if plantCode == "" {
		plantCode = Placeholder
	}
	return &Compositor{plantCode: plantCode, rules: rules}
}

// SerialNumber formats the per-coil serial: YYMMDD-<machine>-<seq>, e.g.
// 250614-3-0007.
func SerialNumber(day time.Time, machineID, sequence int) string {
	return fmt.Sprintf("%s-%d-%04d", day.Format("060102"), machineID, sequence)
}

// Compose assembles the label fields for one coil. It never fails: missing
// order fields and malformed descriptors degrade to placeholders. The ZPL
// document is not rendered here; callers that hold a real serial render it
// with Render.
func (c *Compositor) Compose(order *models.WorkOrder, serial string, machineID int, actualLength float64, flags map[string]bool, now time.Time) Record {
	record := Record{
		SerialNumber: serial,
		MachineID:    machineID,
		ActualLength: actualLength,
		LengthUOM:    "mtr",
		SizeUOM:      "mm",
		OperatorName: "System",
		PlantCode:    c.plantCode,
		PrintDate:    now.Format("02-01-2006"),
		DefectType:   ClassifyDefect(flags, c.rules),
		ProductID:    Placeholder,
		CustomerPart: Placeholder,
		CustomerName: Placeholder,
		Description:  Placeholder,
		Size:         "0",
		Color:        Placeholder,
		LotNo:        Placeholder,
		PONo:         Placeholder,
		WireType:     ParseWireType(""),
	}

	if order != nil {
		record.WorkOrderNo = order.WorkOrderNo
		record.LotNo = orDefault(order.WorkOrderNo, Placeholder)
		record.ProductID = orDefault(order.MCPLPartCode, Placeholder)
		record.CustomerPart = orDefault(order.CustomerPartCode, Placeholder)
		record.CustomerName = orDefault(order.CustomerName, Placeholder)
		record.Description = orDefault(order.MfgProcessName, Placeholder)
		record.Size = orDefault(order.Gauge, "0")
		record.Color = colorText(order.MainColor, order.BiColor)
		record.WireType = ParseWireType(order.WireType)
	}

	return record
}

// Render produces the printable ZPL document and returns the record with its
// Document set.
func (c *Compositor) Render(record Record) Record {
	record.Document = renderZPL(record)
	return record
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func colorText(main, bi string) string {
	switch {
	case main == "" && bi == "":
		return Placeholder
	case bi == "":
		return main
	case main == "":
		return bi
	default:
		return main + "/" + bi
	}
}
