package billing

import (
	"fmt"
	"math"
	"strings"

	"interiors-erp/internal/models"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	grey      = &props.Color{Red: 90, Green: 90, Blue: 90}
	headerBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	summaryBg = &props.Color{Red: 240, Green: 240, Blue: 240}
)

// RenderPDF prints a bill. Totals come from Calculate, the same function
// behind the JSON responses, so the printout always matches the screen.
func RenderPDF(company models.Company, b models.Bill) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   grey,
		}).
		Build()

	m := maroto.New(cfg)
	totals := Calculate(InputFromBill(&b)).Rounded()

	addBillHeader(m, company, b)
	addParties(m, b)
	addItemsTable(m, b.Items)
	addTotals(m, b, totals)
	if strings.TrimSpace(b.Notes) != "" {
		m.AddRows(row.New(4))
		m.AddRows(text.NewRow(6, "Notes: "+b.Notes, props.Text{Size: 8, Color: grey}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bill PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func billTitle(t models.BillType) string {
	if t == models.BillQuotation {
		return "QUOTATION"
	}
	return "TAX INVOICE"
}

func addBillHeader(m core.Maroto, company models.Company, b models.Bill) {
	m.AddRows(
		row.New(10).Add(
			col.New(7).Add(text.New(company.Name, props.Text{Size: 14, Style: fontstyle.Bold})),
			col.New(5).Add(text.New(billTitle(b.BillType), props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right})),
		),
	)

	companyLine := company.Address
	if company.GSTIN != "" {
		companyLine = strings.TrimSpace(companyLine + "  GSTIN: " + company.GSTIN)
	}
	meta := props.Text{Size: 8, Color: grey}
	metaRight := meta
	metaRight.Align = align.Right

	m.AddRows(
		row.New(5).Add(
			col.New(7).Add(text.New(companyLine, meta)),
			col.New(5).Add(text.New("No: "+b.BillNumber, metaRight)),
		),
		row.New(5).Add(
			col.New(7).Add(text.New(company.Phone, meta)),
			col.New(5).Add(text.New("Date: "+b.BillDate.Format("02 Jan 2006"), metaRight)),
		),
	)
	if b.DueDate != nil {
		m.AddRows(row.New(5).Add(
			col.New(7),
			col.New(5).Add(text.New("Due: "+b.DueDate.Format("02 Jan 2006"), metaRight)),
		))
	}
	m.AddRows(row.New(4))
}

func addParties(m core.Maroto, b models.Bill) {
	label := props.Text{Size: 8, Style: fontstyle.Bold}
	value := props.Text{Size: 8}

	m.AddRows(
		row.New(5).Add(
			col.New(6).Add(text.New("Bill To", label)),
			col.New(6).Add(text.New("Project", label)),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(b.ClientName, value)),
			col.New(6).Add(text.New(b.ProjectName, value)),
		),
	)
	if b.ClientAddress != "" || b.ClientGSTIN != "" {
		line := b.ClientAddress
		if b.ClientGSTIN != "" {
			line = strings.TrimSpace(line + "  GSTIN: " + b.ClientGSTIN)
		}
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New(line, value))))
	}
	m.AddRows(row.New(4))
}

func addItemsTable(m core.Maroto, items []models.BillItem) {
	head := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	headLeft := head
	headLeft.Align = align.Left
	cell := &props.Cell{BackgroundColor: headerBg}

	m.AddRows(row.New(7).Add(
		col.New(1).Add(text.New("#", head)).WithStyle(cell),
		col.New(5).Add(text.New("Description", headLeft)).WithStyle(cell),
		col.New(1).Add(text.New("Unit", head)).WithStyle(cell),
		col.New(1).Add(text.New("Qty", head)).WithStyle(cell),
		col.New(2).Add(text.New("Rate", head)).WithStyle(cell),
		col.New(2).Add(text.New("Amount", head)).WithStyle(cell),
	))

	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	for i, it := range items {
		m.AddRows(row.New(6).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1), base)),
			col.New(5).Add(text.New(it.Description, left)),
			col.New(1).Add(text.New(it.Unit, base)),
			col.New(1).Add(text.New(formatQuantity(it.Quantity), right)),
			col.New(2).Add(text.New(FormatINR(it.Rate), right)),
			col.New(2).Add(text.New(FormatINR(it.Quantity*it.Rate), right)),
		))
	}
	m.AddRows(row.New(4))
}

func addTotals(m core.Maroto, b models.Bill, t Totals) {
	label := props.Text{Size: 8, Align: align.Right}
	value := props.Text{Size: 8, Align: align.Right}
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	line := func(name string, amount float64, style props.Text, shaded bool) {
		r := row.New(6).Add(
			col.New(8).Add(text.New(name, style)),
			col.New(4).Add(text.New(FormatINR(amount), style)),
		)
		if shaded {
			r = r.WithStyle(&props.Cell{BackgroundColor: summaryBg})
		}
		m.AddRows(r)
	}
	pct := func(name string, p float64) string {
		return fmt.Sprintf("%s (%s%%)", name, formatQuantity(p))
	}

	line("Subtotal", t.Subtotal, label, false)
	if b.LabourCharges != 0 {
		line("Labour charges", b.LabourCharges, label, false)
	}
	if b.TransportCharges != 0 {
		line("Transport charges", b.TransportCharges, label, false)
	}
	if b.OtherCharges != 0 {
		line("Other charges", b.OtherCharges, label, false)
	}
	line("Gross amount", t.GrossAmount, bold, true)
	if b.CGSTPct != 0 {
		line(pct("CGST", b.CGSTPct), t.CGST, value, false)
	}
	if b.SGSTPct != 0 {
		line(pct("SGST", b.SGSTPct), t.SGST, value, false)
	}
	if b.IGSTPct != 0 {
		line(pct("IGST", b.IGSTPct), t.IGST, value, false)
	}
	line("Total with tax", t.TotalWithTax, bold, true)
	if b.TDSPct != 0 {
		line("Less "+pct("TDS", b.TDSPct), t.TDS, value, false)
	}
	if b.RetentionPct != 0 {
		line("Less "+pct("Retention", b.RetentionPct), t.Retention, value, false)
	}
	if b.AdvancePaid != 0 {
		if b.BillType == models.BillQuotation {
			line("Add advance", b.AdvancePaid, value, false)
		} else {
			line("Less advance paid", b.AdvancePaid, value, false)
		}
	}
	if b.PreviousBills != 0 {
		line("Add previous bills", b.PreviousBills, value, false)
	}
	line("Net payable (Rs.)", t.NetPayable, bold, true)
}

func formatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return fmt.Sprintf("%.0f", q)
	}
	return fmt.Sprintf("%.2f", q)
}
