package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readCSV renders the rows as a column-aligned text dump.
func readCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", err
	}
	return renderRows(rows), nil
}

// readXLSX renders every sheet of an XLSX workbook, each prefixed with its
// sheet name.
func readXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("sheet %s: %w", sheet, err)
		}
		b.WriteString(fmt.Sprintf("\n--- Sheet: %s ---\n", sheet))
		b.WriteString(renderRows(rows))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// readXLS renders every sheet of a legacy XLS workbook.
func readXLS(data []byte) (string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for j := 0; j <= int(sheet.MaxRow); j++ {
			row := sheet.Row(j)
			if row == nil {
				continue
			}
			var cells []string
			for k := row.FirstCol(); k <= row.LastCol(); k++ {
				cells = append(cells, row.Col(k))
			}
			rows = append(rows, cells)
		}
		b.WriteString(fmt.Sprintf("\n--- Sheet: %s ---\n", sheet.Name))
		b.WriteString(renderRows(rows))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// renderRows pads each column to its widest cell so the dump reads as a
// table.
func renderRows(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
