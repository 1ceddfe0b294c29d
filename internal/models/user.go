package models

import "time"

type UserRole string

const (
	RoleAdmin        UserRole = "Admin"
	RoleSiteEngineer UserRole = "Site_Engineer"
	// RoleSuperAdmin never appears in the users table; the console
	// authenticates through SuperAdminSession instead.
	RoleSuperAdmin UserRole = "SuperAdmin"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleSiteEngineer
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyID    uint      `gorm:"index;not null" json:"companyId"`
	Company      *Company  `json:"company,omitempty"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:30" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"size:20;not null" json:"role"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SuperAdminSession stores the sha256 of an opaque console token.
type SuperAdminSession struct {
	ID        uint      `gorm:"primaryKey"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	Email     string    `gorm:"size:100;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
