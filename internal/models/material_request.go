package models

import "time"

type MaterialRequestType string

const (
	RequestGlobal          MaterialRequestType = "GLOBAL"
	RequestProject         MaterialRequestType = "PROJECT"
	RequestProjectMaterial MaterialRequestType = "PROJECT_MATERIAL"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

type MaterialRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	CompanyID   uint                `gorm:"index;not null" json:"companyId"`
	Name        string              `gorm:"size:150" json:"name"`
	Category    string              `gorm:"size:100" json:"category"`
	Unit        string              `gorm:"size:20" json:"unit"`
	DefaultRate float64             `gorm:"not null;default:0" json:"defaultRate"`
	Vendor      string              `gorm:"size:150" json:"vendor"`
	Type        MaterialRequestType `gorm:"size:20;not null" json:"type"`
	ProjectID   *uint               `gorm:"index" json:"projectId"`
	Project     *Project            `json:"project,omitempty"`
	// Set for PROJECT_MATERIAL requests, which draw on an existing catalog entry.
	MaterialID *uint         `json:"materialId"`
	Quantity   *float64      `json:"quantity"`
	Status     RequestStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	EmployeeID uint          `gorm:"index;not null" json:"employeeId"`
	Employee   *User         `json:"employee,omitempty"`

	ReviewedByID     *uint      `json:"reviewedById"`
	ReviewDate       *time.Time `json:"reviewDate"`
	ReviewNote       string     `gorm:"size:255" json:"reviewNote"`
	RejectionReason  string     `gorm:"size:255" json:"rejectionReason"`
	ResultMaterialID *uint      `json:"resultMaterialId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
