package label

import (
	"strconv"
	"strings"
	"text/template"
)

// zplTemplate is the fixed 100x50mm coil label layout for ZD-series
// printers. Static asset: template substitution only, no business logic.
const zplTemplate = `^XA~TA000~JSN^LT0^MNW^MTT^PON^PMN^LH0,0^JMA^PRA,8~SD15^JUS^LRN^CI27^PA0,1,1,0^XZ
^XA
^MMT
^PW799
^LL400
^LS0
^FO17,43^GB690,351,2^FS
^FT31,73^A0N,23,23^FH^CI28^FD{{.Description}}^FS^CI27
^FT257,73^A0N,23,25^FH^CI28^FD{{.TypeDisplay}}^FS^CI27
^FT31,132^A0N,23,23^FH^CI28^FDSIZE^FS^CI27
^FT257,130^A0N,23,23^FH^CI28^FD{{.Size}} {{.SizeUOM}}^FS^CI27
^FT31,161^A0N,23,23^FH^CI28^FDCOLOUR^FS^CI27
^FT257,161^A0N,23,23^FH^CI28^FD{{.Color}}^FS^CI27
^FT31,217^A0N,23,23^FH^CI28^FDCUSTOMER^FS^CI27
^FT255,217^A0N,23,23^FH^CI28^FD{{.CustomerName}}^FS^CI27
^FT31,187^A0N,23,23^FH^CI28^FDLOT NO^FS^CI27
^FT257,187^A0N,23,23^FH^CI28^FD{{.LotNo}}^FS^CI27
^FT31,246^A0N,23,23^FH^CI28^FDCOIL LENGTH^FS^CI27
^FT257,246^A0N,23,19^FH^CI28^FD{{.Length}} {{.LengthUOM}}{{.QAText}}^FS^CI27
^FT31,306^A0N,23,23^FH^CI28^FDP.O No^FS^CI27
^FT255,306^A0N,23,23^FH^CI28^FD{{.PONo}}^FS^CI27
^FT31,277^A0N,23,23^FH^CI28^FDOPERATOR^FS^CI27
^FT257,275^A0N,23,23^FH^CI28^FD{{.OperatorName}}^FS^CI27
^FT32,367^A0N,20,13^FH^CI28^FDMfg By^FS^CI27
^BY1,3,50^FT477,105^BCN,,N,N^FH^FD{{.ProductID}}^FS
^FT257,96^A0N,23,20^FH^CI28^FD{{.ProductID}}^FS^CI27
^FT31,337^A0N,23,23^FH^CI28^FDDATE^FS^CI27
^FT257,337^A0N,23,23^FH^CI28^FD{{.PrintDate}}^FS^CI27
^FT257,370^A0N,23,23^FH^CI28^FD{{.SerialNumber}}^FS^CI27
^FT31,103^A0N,23,23^FH^CI28^FDFG PART NO^FS^CI27
^FT480,390^BQN,2,4^FH^FDPLAP{{.ProductID}}|Q{{.Length}}|S{{.SerialNumber}}|D{{.PrintDate}}|L{{.LotNo}}^FS
^BY1,3,41^FT480,180^BCN,,N,N^FH^FD{{.Length}} {{.LengthUOM}}^FS
^FO248,54^GB0,335,3^FS
^FO708,84^GFA,257,3540,12,:Z64:eJztlzEOwjAMRV2CVIklNyA7l8jR2qNk7iXIcTpmRCgCYsexu7AxMDhLn37V99qxAJetnRXohHc7HcE3fMGPdvOb3/zmN7/5zW9+85vf/H/sv213ZPozoJXveEZ8YmaubXfMj8YTc0ER8468dM7IsXOSLIe96Eeg0u5EPwKlv7PqOZA7R9F//95Z9D3wZJ5UT4F98CJ6CqTBQfQYGHoMVNmd6DFQDiz6FsjKMSkHRbiuyufDfuLrBxF0zD0=:0104^FS
^FT712,28^A0N,20,20^FH^CI28^FDINSERT^FS^CI27
^FT723,49^A0N,20,20^FH^CI28^FDTHIS^FS^CI27
^FT723,70^A0N,20,20^FH^CI28^FDWAY^FS^CI27
^FT78,370^A0N,27,20^FH^CI28^FDMCPL - {{.PlantCode}}^FS^CI27
^FT408,33^A0N,25,25^FH^CI28^FDFINISH GOODS BARCODE^FS^CI27
^FT62,33^A0N,25,25^FH^CI28^FDMALHOTRA CABLES^FS^CI27
^PQ1,0,1,Y
^XZ
`

var labelTemplate = template.Must(template.New("coil-label").Parse(zplTemplate))

type zplFields struct {
	Description  string
	TypeDisplay  string
	Size         string
	SizeUOM      string
	Color        string
	CustomerName string
	LotNo        string
	Length       string
	LengthUOM    string
	QAText       string
	PONo         string
	OperatorName string
	ProductID    string
	PrintDate    string
	SerialNumber string
	PlantCode    string
}

func renderZPL(record Record) string {
	fields := zplFields{
		Description:  record.Description,
		TypeDisplay:  record.WireType.Display,
		Size:         record.Size,
		SizeUOM:      record.SizeUOM,
		Color:        record.Color,
		CustomerName: record.CustomerName,
		LotNo:        record.LotNo,
		Length:       strconv.FormatFloat(record.ActualLength, 'f', -1, 64),
		LengthUOM:    record.LengthUOM,
		QAText:       qaStatusText(record.DefectType),
		PONo:         record.PONo,
		OperatorName: record.OperatorName,
		ProductID:    record.ProductID,
		PrintDate:    record.PrintDate,
		SerialNumber: record.SerialNumber,
		PlantCode:    record.PlantCode,
	}

	var builder strings.Builder
	if err := labelTemplate.Execute(&builder, fields); err != nil {
		// The template is static and the data is plain strings; execution
		// cannot fail at runtime.
		return zplTemplate
	}
	return builder.String()
}
