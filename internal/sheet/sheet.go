// Package sheet builds simple tabular .xlsx workbooks.
package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table is one worksheet: a bold header row followed by data rows.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]any
	Widths  []float64
}

// Sanitize stops spreadsheet apps from treating user text as a formula.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func sanitizeValue(v any) any {
	if s, ok := v.(string); ok {
		return Sanitize(s)
	}
	return v
}

// Build writes the tables, in order, into a new workbook and returns its bytes.
func Build(tables ...Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#212529"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", t.Name, err)
		}

		header := make([]any, len(t.Headers))
		for j, h := range t.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return nil, err
		}
		if len(t.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
			if err := f.SetCellStyle(t.Name, "A1", last, headerStyle); err != nil {
				return nil, err
			}
		}

		for r, row := range t.Rows {
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = sanitizeValue(v)
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
				return nil, err
			}
		}

		for j, w := range t.Widths {
			col, _ := excelize.ColumnNumberToName(j + 1)
			if err := f.SetColWidth(t.Name, col, col, w); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
