package models

import "time"

type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:30" json:"phone"`
	GSTIN     string    `gorm:"size:20" json:"gstin"`
	LogoPath  string    `gorm:"size:255" json:"logoPath"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
