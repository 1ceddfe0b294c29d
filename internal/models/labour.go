package models

import "time"

type Labour struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"index;not null" json:"companyId"`
	ProjectID uint      `gorm:"index;not null" json:"projectId"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Skill     string    `gorm:"size:50" json:"skill"`
	DailyWage float64   `gorm:"not null;default:0" json:"dailyWage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LabourPayment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LabourID  uint      `gorm:"index;not null" json:"labourId"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Mode      string    `gorm:"size:20" json:"mode"` // cash, bank, upi
	Notes     string    `gorm:"size:255" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}
