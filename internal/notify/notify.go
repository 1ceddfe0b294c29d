package notify

import (
	"interiors-erp/internal/models"

	"gorm.io/gorm"
)

const (
	KindRequestSubmitted = "material_request_submitted"
	KindRequestApproved  = "material_request_approved"
	KindRequestRejected  = "material_request_rejected"
	KindLowStock         = "low_stock"
)

// ToUser addresses a single user.
func ToUser(tx *gorm.DB, companyID, userID uint, kind, title, message string) error {
	return tx.Create(&models.Notification{
		CompanyID: companyID,
		UserID:    &userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
	}).Error
}

// ToAdmins addresses every admin of the company.
func ToAdmins(tx *gorm.DB, companyID uint, kind, title, message string) error {
	return tx.Create(&models.Notification{
		CompanyID: companyID,
		Kind:      kind,
		Title:     title,
		Message:   message,
	}).Error
}
