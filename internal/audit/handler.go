package audit

import (
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/audit-logs?entity_type=&entity_id=&limit=
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		query := db.Where("company_id = ?", user.CompanyID)
		if et := c.Query("entity_type"); et != "" {
			query = query.Where("entity_type = ?", et)
		}
		entityID, err := httpx.QueryID(c, "entity_id")
		if err != nil {
			return err
		}
		if entityID != 0 {
			query = query.Where("entity_id = ?", entityID)
		}

		var logs []models.AuditLog
		if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
			return err
		}
		return httpx.OK(c, logs)
	}
}
