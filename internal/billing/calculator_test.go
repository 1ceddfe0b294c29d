package billing

import (
	"math"
	"testing"

	"interiors-erp/internal/models"
)

func sampleInput(billType models.BillType) Input {
	return Input{
		BillType:      billType,
		Items:         []Item{{Quantity: 10, Rate: 100}},
		LabourCharges: 500,
		CGSTPct:       9,
		SGSTPct:       9,
		TDSPct:        2,
		AdvancePaid:   1000,
	}
}

func TestCalculate_InvoiceExample(t *testing.T) {
	got := Calculate(sampleInput(models.BillInvoice)).Rounded()
	want := Totals{
		Subtotal:     1000,
		GrossAmount:  1500,
		CGST:         135,
		SGST:         135,
		TotalWithTax: 1770,
		TDS:          35.4,
		NetPayable:   734.6,
	}
	if got != want {
		t.Errorf("Calculate() = %+v\nwant %+v", got, want)
	}
}

func TestCalculate_QuotationAddsAdvance(t *testing.T) {
	got := Calculate(sampleInput(models.BillQuotation)).Rounded()
	if got.NetPayable != 2734.6 {
		t.Errorf("netPayable = %v, want 2734.6", got.NetPayable)
	}
	if got.TotalWithTax != 1770 || got.TDS != 35.4 {
		t.Errorf("quotation changed tax figures: %+v", got)
	}
}

func TestCalculate_SignPolicy(t *testing.T) {
	base := sampleInput(models.BillInvoice)
	base.AdvancePaid = 300
	base.PreviousBills = 200

	invoice := Calculate(base)
	quote := base
	quote.BillType = models.BillQuotation
	quotation := Calculate(quote)

	// only the advance flips sign, so the difference is twice the advance
	if diff := quotation.NetPayable - invoice.NetPayable; math.Abs(diff-2*base.AdvancePaid) > 1e-9 {
		t.Errorf("quotation - invoice = %v, want %v", diff, 2*base.AdvancePaid)
	}

	noPrev := base
	noPrev.PreviousBills = 0
	if diff := invoice.NetPayable - Calculate(noPrev).NetPayable; math.Abs(diff-200) > 1e-9 {
		t.Errorf("previous bills contribution on invoice = %v, want +200", diff)
	}
	noPrev.BillType = models.BillQuotation
	if diff := quotation.NetPayable - Calculate(noPrev).NetPayable; math.Abs(diff-200) > 1e-9 {
		t.Errorf("previous bills contribution on quotation = %v, want +200", diff)
	}
}

func TestCalculate_IsPure(t *testing.T) {
	in := Input{
		BillType:         models.BillInvoice,
		Items:            []Item{{Quantity: 3.3, Rate: 17.77}, {Quantity: 0.1, Rate: 0.2}},
		TransportCharges: 12.34,
		OtherCharges:     0.01,
		IGSTPct:          18,
		TDSPct:           1,
		RetentionPct:     5,
		PreviousBills:    99.99,
	}
	first := Calculate(in)
	for i := 0; i < 5; i++ {
		if got := Calculate(in); got != first {
			t.Fatalf("call %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestCalculate_NoIntermediateRounding(t *testing.T) {
	// rounding the 0.999 subtotal first would make this exactly 1.5
	in := Input{Items: []Item{{Quantity: 3, Rate: 0.333}}, CGSTPct: 50}
	got := Calculate(in)
	if math.Abs(got.TotalWithTax-1.4985) > 1e-9 {
		t.Errorf("totalWithTax = %v, want 1.4985", got.TotalWithTax)
	}
}

func TestCalculate_Empty(t *testing.T) {
	if got := Calculate(Input{BillType: models.BillInvoice}); got != (Totals{}) {
		t.Errorf("Calculate(empty) = %+v, want zero", got)
	}
}

func TestInputFromBill(t *testing.T) {
	b := &models.Bill{
		BillType:      models.BillInvoice,
		LabourCharges: 500,
		CGSTPct:       9,
		SGSTPct:       9,
		TDSPct:        2,
		AdvancePaid:   1000,
		Items:         []models.BillItem{{Quantity: 10, Rate: 100, Amount: 99999}},
	}
	if got := Calculate(InputFromBill(b)).Rounded().NetPayable; got != 734.6 {
		t.Errorf("netPayable = %v, want 734.6 (stored item amount must be ignored)", got)
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{734.6, "734.60"},
		{1000, "1,000.00"},
		{123456.789, "1,23,456.79"},
		{12345678, "1,23,45,678.00"},
		{-2500.5, "-2,500.50"},
	}
	for _, tt := range tests {
		if got := FormatINR(tt.in); got != tt.want {
			t.Errorf("FormatINR(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
