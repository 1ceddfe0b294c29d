package models

import "time"

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "PLANNING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectOnHold     ProjectStatus = "ON_HOLD"
	ProjectCompleted  ProjectStatus = "COMPLETED"
)

type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CompanyID   uint          `gorm:"index;not null" json:"companyId"`
	ClientID    *uint         `gorm:"index" json:"clientId"`
	Client      *Client       `json:"client,omitempty"`
	Name        string        `gorm:"size:150;not null" json:"name"`
	Location    string        `gorm:"size:255" json:"location"`
	Status      ProjectStatus `gorm:"size:20;not null;default:PLANNING" json:"status"`
	StartDate   *time.Time    `json:"startDate"`
	EndDate     *time.Time    `json:"endDate"`
	Budget      float64       `gorm:"not null;default:0" json:"budget"`
	Description string        `gorm:"type:text" json:"description"`
	Engineers   []Engineer    `gorm:"many2many:project_engineers;" json:"engineers,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ProjectDocument: an uploaded file kept under the upload directory.
type ProjectDocument struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"index;not null" json:"projectId"`
	FileName     string    `gorm:"size:255;not null" json:"fileName"`
	StoredPath   string    `gorm:"size:255;not null" json:"-"`
	ContentType  string    `gorm:"size:100" json:"contentType"`
	Size         int64     `json:"size"`
	UploadedByID uint      `json:"uploadedById"`
	CreatedAt    time.Time `json:"createdAt"`
}
