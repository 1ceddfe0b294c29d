package models

import "time"

type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"index;not null" json:"companyId"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	GSTIN     string    `gorm:"size:20" json:"gstin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"
)

type Contract struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CompanyID uint           `gorm:"index;not null" json:"companyId"`
	ClientID  uint           `gorm:"index;not null" json:"clientId"`
	Client    *Client        `json:"client,omitempty"`
	ProjectID *uint          `gorm:"index" json:"projectId"`
	Title     string         `gorm:"size:150;not null" json:"title"`
	Value     float64        `gorm:"not null;default:0" json:"value"`
	StartDate time.Time      `gorm:"not null" json:"startDate"`
	EndDate   *time.Time     `json:"endDate"`
	Status    ContractStatus `gorm:"size:20;not null;default:draft" json:"status"`
	Terms     string         `gorm:"type:text" json:"terms"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
