package models

import "time"

// Material is a company-wide catalog entry.
type Material struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyID    uint      `gorm:"index;not null;uniqueIndex:idx_material_company_code" json:"companyId"`
	MaterialCode string    `gorm:"size:20;not null;uniqueIndex:idx_material_company_code" json:"materialId"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	Category     string    `gorm:"size:100;index" json:"category"`
	Unit         string    `gorm:"size:20;not null" json:"unit"`
	DefaultRate  float64   `gorm:"not null;default:0" json:"defaultRate"`
	Vendor       string    `gorm:"size:150" json:"vendor"`
	Description  string    `gorm:"size:255" json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProjectMaterial: quantity of a material allocated to a project.
// Remaining (assigned - used) is derived and never stored.
type ProjectMaterial struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"not null;uniqueIndex:idx_project_material_pair" json:"projectId"`
	MaterialID uint      `gorm:"not null;uniqueIndex:idx_project_material_pair;index" json:"materialId"`
	Material   Material  `json:"material"`
	Assigned   float64   `gorm:"not null;default:0" json:"assigned"`
	Used       float64   `gorm:"not null;default:0" json:"used"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type UsageLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProjectID         uint      `gorm:"index;not null" json:"projectId"`
	MaterialID        uint      `gorm:"index;not null" json:"materialId"`
	ProjectMaterialID uint      `gorm:"index;not null" json:"projectMaterialId"`
	Material          *Material `json:"material,omitempty"`
	Quantity          float64   `gorm:"not null" json:"quantity"`
	Date              time.Time `gorm:"index;not null" json:"date"`
	Remarks           string    `gorm:"size:255" json:"remarks"`
	LoggedByID        uint      `json:"loggedById"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
