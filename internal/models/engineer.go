package models

import "time"

// Engineer is the profile of a Site_Engineer user.
type Engineer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyID   uint      `gorm:"index;not null" json:"companyId"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Email       string    `gorm:"size:100" json:"email"`
	Phone       string    `gorm:"size:30" json:"phone"`
	Designation string    `gorm:"size:100" json:"designation"`
	PhotoPath   string    `gorm:"size:255" json:"photoPath"`
	Projects    []Project `gorm:"many2many:project_engineers;" json:"projects,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
