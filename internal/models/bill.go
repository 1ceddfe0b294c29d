package models

import "time"

type BillType string

const (
	BillInvoice   BillType = "invoice"
	BillQuotation BillType = "quotation"
)

type BillStatus string

const (
	BillDraft     BillStatus = "draft"
	BillSent      BillStatus = "sent"
	BillPaid      BillStatus = "paid"
	BillCancelled BillStatus = "cancelled"
)

// Bill holds inputs only. Every total is recomputed from them by the
// billing calculator on each read.
type Bill struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CompanyID     uint       `gorm:"not null;uniqueIndex:idx_bill_company_number" json:"companyId"`
	ProjectID     *uint      `gorm:"index" json:"projectId"`
	BillNumber    string     `gorm:"size:30;not null;uniqueIndex:idx_bill_company_number" json:"billNumber"`
	BillType      BillType   `gorm:"size:20;not null" json:"billType"`
	BillDate      time.Time  `gorm:"not null" json:"billDate"`
	DueDate       *time.Time `json:"dueDate"`
	ClientName    string     `gorm:"size:150;not null" json:"clientName"`
	ClientAddress string     `gorm:"size:255" json:"clientAddress"`
	ClientGSTIN   string     `gorm:"size:20" json:"clientGstin"`
	ProjectName   string     `gorm:"size:150" json:"projectName"`

	LabourCharges    float64 `gorm:"not null;default:0" json:"labourCharges"`
	TransportCharges float64 `gorm:"not null;default:0" json:"transportCharges"`
	OtherCharges     float64 `gorm:"not null;default:0" json:"otherCharges"`
	CGSTPct          float64 `gorm:"column:cgst_pct;not null;default:0" json:"cgst"`
	SGSTPct          float64 `gorm:"column:sgst_pct;not null;default:0" json:"sgst"`
	IGSTPct          float64 `gorm:"column:igst_pct;not null;default:0" json:"igst"`
	TDSPct           float64 `gorm:"column:tds_pct;not null;default:0" json:"tds"`
	RetentionPct     float64 `gorm:"not null;default:0" json:"retention"`
	AdvancePaid      float64 `gorm:"not null;default:0" json:"advancePaid"`
	PreviousBills    float64 `gorm:"not null;default:0" json:"previousBills"`

	Status    BillStatus `gorm:"size:20;not null;default:draft" json:"status"`
	Notes     string     `gorm:"type:text" json:"notes"`
	Items     []BillItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type BillItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	BillID      uint    `gorm:"index;not null" json:"billId"`
	Description string  `gorm:"size:255;not null" json:"description"`
	Unit        string  `gorm:"size:20" json:"unit"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	Rate        float64 `gorm:"not null" json:"rate"`
	// Always quantity * rate, recomputed before every write.
	Amount float64 `gorm:"not null" json:"amount"`
}
