package audit

import (
	"encoding/json"
	"fmt"

	"interiors-erp/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	CompanyID   uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog stores an audit entry. Pass the transaction handle so the entry
// commits or rolls back together with the change it describes.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	// jsonb columns need the JSON literal null rather than an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		CompanyID:   opts.CompanyID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// UserName looks up the display name stored next to each entry.
func UserName(tx *gorm.DB, userID uint) string {
	var user models.User
	if err := tx.Select("name").First(&user, userID).Error; err != nil {
		return ""
	}
	return user.Name
}
