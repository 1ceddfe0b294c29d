package auth

import (
	"context"

	"interiors-erp/internal/models"

	"gorm.io/gorm"
)

// UserStatus tells the middleware whether a JWT's user may still sign in.
// Tokens outlive deactivation, so every request is checked.
type UserStatus interface {
	IsActive(ctx context.Context, userID uint) (bool, error)
}

type GormUserStatus struct {
	db *gorm.DB
}

func NewUserStatus(db *gorm.DB) *GormUserStatus {
	return &GormUserStatus{db: db}
}

// IsActive is false for deactivated and deleted users.
func (s *GormUserStatus) IsActive(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND active = ?", userID, true).
		Count(&count).Error
	return count > 0, err
}
