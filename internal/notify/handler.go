package notify

import (
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// visibleTo limits notifications to the user's own plus, for admins, the
// company-wide ones.
func visibleTo(db *gorm.DB, user auth.UserCredential) *gorm.DB {
	q := db.Model(&models.Notification{}).Where("company_id = ?", user.CompanyID)
	if user.IsAdmin() {
		return q.Where("(user_id = ? OR user_id IS NULL)", user.UserID)
	}
	return q.Where("user_id = ?", user.UserID)
}

// GET /api/notifications?unread=true
func ListNotificationsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		q := visibleTo(db, user)
		if c.QueryBool("unread") {
			q = q.Where("is_read = ?", false)
		}

		var items []models.Notification
		if err := q.Order("created_at DESC").Limit(200).Find(&items).Error; err != nil {
			return err
		}

		var unread int64
		if err := visibleTo(db, user).Where("is_read = ?", false).Count(&unread).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "data": items, "unread": unread})
	}
}

// PUT /api/notifications/:id/read
func MarkReadHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		res := visibleTo(db, user).Where("id = ?", id).Update("is_read", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Notification not found")
		}
		return httpx.OK(c, nil)
	}
}

// PUT /api/notifications/read-all
func MarkAllReadHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		res := visibleTo(db, user).Where("is_read = ?", false).Update("is_read", true)
		if res.Error != nil {
			return res.Error
		}
		return httpx.OK(c, fiber.Map{"updated": res.RowsAffected})
	}
}
