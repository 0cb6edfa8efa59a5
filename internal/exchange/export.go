package exchange

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cargodesk/cargodesk-backend/pkg/db/models"
)

// Column layout of the exported sheet, in order.
var exportHeaders = []string{
	"Reference Code",
	"Supplier",
	"CBM",
	"Cartons",
	"Gross Weight",
	"Product Cost",
	"Freight Cost",
	"Awaiting",
	"Production Days",
	"Production Ready",
	"Status",
	"Client",
}

// Numeric columns are right-aligned and 2-decimal formatted. Cartons and
// production days are integer counts but share the alignment.
var numericColumns = map[int]bool{
	2: true, // CBM
	3: true, // Cartons
	4: true, // Gross Weight
	5: true, // Product Cost
	6: true, // Freight Cost
	8: true, // Production Days
}

const (
	maxColumnWidth = 45.0
	tintColor      = "F2F2F2"
	readyStatus    = "ready_to_ship"
)

type sheetStyles struct {
	header  int
	text    int
	num     int
	textAlt int
	numAlt  int
	label   int
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Style: 1, Color: "000000"})
	}
	return borders
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	font := &excelize.Font{Family: "Calibri", Size: 11}
	boldFont := &excelize.Font{Family: "Calibri", Size: 11, Bold: true}
	numFmt := "#,##0.00"
	tint := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{tintColor}}

	header, err := f.NewStyle(&excelize.Style{
		Font:      boldFont,
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	text, err := f.NewStyle(&excelize.Style{
		Font:      font,
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	if err != nil {
		return nil, err
	}
	num, err := f.NewStyle(&excelize.Style{
		Font:         font,
		Border:       thinBorders(),
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		CustomNumFmt: &numFmt,
	})
	if err != nil {
		return nil, err
	}
	textAlt, err := f.NewStyle(&excelize.Style{
		Font:      font,
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "left"},
		Fill:      tint,
	})
	if err != nil {
		return nil, err
	}
	numAlt, err := f.NewStyle(&excelize.Style{
		Font:         font,
		Border:       thinBorders(),
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		CustomNumFmt: &numFmt,
		Fill:         tint,
	})
	if err != nil {
		return nil, err
	}
	label, err := f.NewStyle(&excelize.Style{Font: boldFont})
	if err != nil {
		return nil, err
	}

	return &sheetStyles{
		header:  header,
		text:    text,
		num:     num,
		textAlt: textAlt,
		numAlt:  numAlt,
		label:   label,
	}, nil
}

func cellValues(item *models.ContainerItem) []any {
	return []any{
		item.ReferenceCode,
		item.Supplier,
		item.CBM.InexactFloat64(),
		item.Cartons,
		item.GrossWeight.InexactFloat64(),
		item.ProductCost.InexactFloat64(),
		item.FreightCost.InexactFloat64(),
		strings.Join(item.Awaiting, ", "),
		item.ProductionDays,
		item.ProductionReady,
		string(item.Status),
		item.Client,
	}
}

// buildWorkbook renders the container's rows as a styled sheet with a live
// summary block. Formulas stay formulas so the sheet keeps computing after
// the recipient edits it.
func buildWorkbook(containerName string, rows []models.ContainerItem) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(containerName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	widths := make([]float64, len(exportHeaders))
	for col, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return nil, err
		}
		widths[col] = float64(len(title))
	}

	for i := range rows {
		rowNum := i + 2
		tinted := rowNum%2 == 0
		for col, value := range cellValues(&rows[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
			style := styles.text
			if numericColumns[col] {
				style = styles.num
				if tinted {
					style = styles.numAlt
				}
			} else if tinted {
				style = styles.textAlt
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return nil, err
			}
			if w := float64(len(fmt.Sprint(value))); w > widths[col] {
				widths[col] = w
			}
		}
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		w := width + 2
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return nil, err
		}
	}

	if len(rows) > 0 {
		if err := writeSummary(f, sheet, styles, len(rows)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, sheet string, styles *sheetStyles, rowCount int) error {
	firstData := 2
	lastData := rowCount + 1
	start := lastData + 3

	entries := []struct {
		label   string
		formula string
	}{
		{"Total CBM", fmt.Sprintf("SUM(C%d:C%d)", firstData, lastData)},
		{"Total Cost", fmt.Sprintf("SUM(F%d:F%d)+SUM(G%d:G%d)", firstData, lastData, firstData, lastData)},
		{"CBM Ready To Ship", fmt.Sprintf("SUMIF(K%d:K%d,%q,C%d:C%d)", firstData, lastData, readyStatus, firstData, lastData)},
	}

	for i, entry := range entries {
		labelCell, _ := excelize.CoordinatesToCellName(1, start+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, start+i)
		if err := f.SetCellValue(sheet, labelCell, entry.label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, labelCell, labelCell, styles.label); err != nil {
			return err
		}
		if err := f.SetCellFormula(sheet, valueCell, entry.formula); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, valueCell, valueCell, styles.num); err != nil {
			return err
		}
	}
	return nil
}

// sheetName keeps the tab legal: excel rejects a handful of characters and
// caps names at 31 runes.
func sheetName(containerName string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(containerName))
	if cleaned == "" {
		return "Items"
	}
	runes := []rune(cleaned)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
