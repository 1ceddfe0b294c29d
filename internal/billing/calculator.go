// Package billing computes bill totals and manages invoices and quotations.
package billing

import (
	"interiors-erp/internal/models"

	"github.com/shopspring/decimal"
)

type Item struct {
	Quantity float64
	Rate     float64
}

// Input carries every field the totals depend on. Percentages are given as
// whole numbers (9 means 9%).
type Input struct {
	BillType         models.BillType
	Items            []Item
	LabourCharges    float64
	TransportCharges float64
	OtherCharges     float64
	CGSTPct          float64
	SGSTPct          float64
	IGSTPct          float64
	TDSPct           float64
	RetentionPct     float64
	AdvancePaid      float64
	PreviousBills    float64
}

type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	GrossAmount  float64 `json:"grossAmount"`
	CGST         float64 `json:"cgstAmount"`
	SGST         float64 `json:"sgstAmount"`
	IGST         float64 `json:"igstAmount"`
	TotalWithTax float64 `json:"totalWithTax"`
	TDS          float64 `json:"tdsAmount"`
	Retention    float64 `json:"retentionAmount"`
	NetPayable   float64 `json:"netPayable"`
}

// Calculate is the single source of bill arithmetic. Nothing is rounded
// here; callers round for display with Rounded.
//
// Advance paid is deducted on an invoice but added on a quotation, where it
// is money the client has committed on top of the quoted amount. Previous
// bills are added for both types.
func Calculate(in Input) Totals {
	var t Totals
	for _, it := range in.Items {
		t.Subtotal += it.Quantity * it.Rate
	}
	t.GrossAmount = t.Subtotal + in.LabourCharges + in.TransportCharges + in.OtherCharges
	t.CGST = t.GrossAmount * in.CGSTPct / 100
	t.SGST = t.GrossAmount * in.SGSTPct / 100
	t.IGST = t.GrossAmount * in.IGSTPct / 100
	t.TotalWithTax = t.GrossAmount + t.CGST + t.SGST + t.IGST
	t.TDS = t.TotalWithTax * in.TDSPct / 100
	t.Retention = t.TotalWithTax * in.RetentionPct / 100

	t.NetPayable = t.TotalWithTax - t.TDS - t.Retention
	if in.BillType == models.BillQuotation {
		t.NetPayable += in.AdvancePaid
	} else {
		t.NetPayable -= in.AdvancePaid
	}
	t.NetPayable += in.PreviousBills
	return t
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Rounded returns a copy with every amount rounded half away from zero to
// two decimals.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:     round2(t.Subtotal),
		GrossAmount:  round2(t.GrossAmount),
		CGST:         round2(t.CGST),
		SGST:         round2(t.SGST),
		IGST:         round2(t.IGST),
		TotalWithTax: round2(t.TotalWithTax),
		TDS:          round2(t.TDS),
		Retention:    round2(t.Retention),
		NetPayable:   round2(t.NetPayable),
	}
}

// InputFromBill maps a stored bill onto the calculator input.
func InputFromBill(b *models.Bill) Input {
	in := Input{
		BillType:         b.BillType,
		LabourCharges:    b.LabourCharges,
		TransportCharges: b.TransportCharges,
		OtherCharges:     b.OtherCharges,
		CGSTPct:          b.CGSTPct,
		SGSTPct:          b.SGSTPct,
		IGSTPct:          b.IGSTPct,
		TDSPct:           b.TDSPct,
		RetentionPct:     b.RetentionPct,
		AdvancePaid:      b.AdvancePaid,
		PreviousBills:    b.PreviousBills,
		Items:            make([]Item, len(b.Items)),
	}
	for i, it := range b.Items {
		in.Items[i] = Item{Quantity: it.Quantity, Rate: it.Rate}
	}
	return in
}
