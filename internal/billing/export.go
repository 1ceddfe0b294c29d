package billing

import (
	"interiors-erp/internal/sheet"
)

var billHeaders = []string{
	"Bill No", "Type", "Date", "Client", "Project", "Status",
	"Subtotal", "Gross", "CGST", "SGST", "IGST", "Total with tax", "TDS", "Retention", "Net payable",
}

// BillRows flattens bills into spreadsheet rows using the calculator's
// rounded totals.
func BillRows(views []BillView) [][]any {
	rows := make([][]any, len(views))
	for i, v := range views {
		t := v.Totals
		rows[i] = []any{
			v.BillNumber, string(v.BillType), v.BillDate.Format("2006-01-02"), v.ClientName, v.ProjectName, string(v.Status),
			t.Subtotal, t.GrossAmount, t.CGST, t.SGST, t.IGST, t.TotalWithTax, t.TDS, t.Retention, t.NetPayable,
		}
	}
	return rows
}

func BillsTable(views []BillView) sheet.Table {
	return sheet.Table{
		Name:    "Bills",
		Headers: billHeaders,
		Rows:    BillRows(views),
		Widths:  []float64{16, 10, 12, 28, 28, 10, 14, 14, 12, 12, 12, 16, 12, 12, 16},
	}
}

// ExportXLSX writes all given bills to a one-sheet workbook.
func ExportXLSX(views []BillView) ([]byte, error) {
	return sheet.Build(BillsTable(views))
}
