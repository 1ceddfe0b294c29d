package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionApprove AuditAction = "approve"
	AuditActionReject  AuditAction = "reject"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	CompanyID uint   `gorm:"index;not null" json:"companyId"`
	UserID    uint   `json:"userId"`
	UserName  string `gorm:"size:100" json:"userName"`

	// e.g. "material_request", "usage_log", "bill"
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   uint   `gorm:"index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	BeforeData string `gorm:"type:jsonb" json:"beforeData"`
	AfterData  string `gorm:"type:jsonb" json:"afterData"`
}
