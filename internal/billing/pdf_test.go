package billing

import (
	"bytes"
	"testing"
	"time"

	"interiors-erp/internal/models"
)

func TestRenderPDF(t *testing.T) {
	due := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	bill := models.Bill{
		BillNumber:    "INV-2026-0007",
		BillType:      models.BillInvoice,
		BillDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		ClientName:    "R. Mehta",
		ClientGSTIN:   "27ABCDE1234F1Z5",
		ProjectName:   "Bandra flat",
		LabourCharges: 500,
		CGSTPct:       9,
		SGSTPct:       9,
		TDSPct:        2,
		AdvancePaid:   1000,
		Notes:         "Payable within 30 days",
		Items: []models.BillItem{
			{Description: "Modular kitchen shutters", Unit: "sqft", Quantity: 10, Rate: 100},
		},
	}
	company := models.Company{Name: "Acme Interiors", Address: "Mumbai", GSTIN: "27AAAAA0000A1Z5"}

	for _, bt := range []models.BillType{models.BillInvoice, models.BillQuotation} {
		bill.BillType = bt
		data, err := RenderPDF(company, bill)
		if err != nil {
			t.Fatalf("RenderPDF(%s) error = %v", bt, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("RenderPDF(%s) output does not start with a PDF header", bt)
		}
	}
}
