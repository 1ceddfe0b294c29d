package models

import "time"

type Notification struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index;not null" json:"companyId"`
	// nil: addressed to every admin of the company
	UserID    *uint     `gorm:"index" json:"userId"`
	Title     string    `gorm:"size:150;not null" json:"title"`
	Message   string    `gorm:"size:500" json:"message"`
	Kind      string    `gorm:"size:40" json:"kind"`
	Read      bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
