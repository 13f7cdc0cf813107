package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures the workbook
type ExcelOptions struct {
	SheetName   string `json:"sheet_name"`
	HeaderFill  string `json:"header_fill"`
	HeaderColor string `json:"header_color"`
	MinWidth    float64
	MaxWidth    float64
}

// DefaultExcelOptions returns default workbook options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:   "Sessions",
		HeaderFill:  "4472C4",
		HeaderColor: "FFFFFF",
		MinWidth:    10,
		MaxWidth:    50,
	}
}

// WriteExcel renders the rows as an XLSX workbook with a frozen, filtered
// header row.
func WriteExcel(rows []SessionRow, options ExcelOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := options.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: options.HeaderColor},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{options.HeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	widths := make([]float64, len(Columns))
	for i, col := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
		widths[i] = float64(len(col))
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	for r, row := range rows {
		for c, val := range row.values() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("failed to set cell value: %w", err)
			}
			if w := float64(len(fmt.Sprint(val))); w > widths[c] {
				widths[c] = w
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w = min(max(w+2, options.MinWidth), options.MaxWidth)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
