package labour

import (
	"errors"
	"strings"
	"time"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/audit"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/projects"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var paymentModes = []any{"cash", "bank", "upi", "cheque"}

type LabourRequest struct {
	ProjectID uint    `json:"projectId"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Skill     string  `json:"skill"`
	DailyWage float64 `json:"dailyWage"`
}

func (r LabourRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.DailyWage, validation.Min(0.0)),
	)
}

type PaymentRequest struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Mode   string  `json:"mode"`
	Notes  string  `json:"notes"`
}

func (r PaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Amount, validation.Required, validation.Min(0.01)),
		validation.Field(&r.Mode, validation.In(paymentModes...)),
		validation.Field(&r.Notes, validation.Length(0, 255)),
	)
}

// LabourView adds the paid total, which is always summed from payments.
type LabourView struct {
	models.Labour
	TotalPaid float64 `json:"totalPaid"`
}

func totalsByLabour(db *gorm.DB, ids []uint) (map[uint]float64, error) {
	type row struct {
		LabourID uint
		Total    float64
	}
	var rows []row
	if len(ids) > 0 {
		err := db.Model(&models.LabourPayment{}).
			Select("labour_id, COALESCE(SUM(amount), 0) AS total").
			Where("labour_id IN ?", ids).
			Group("labour_id").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
	}
	out := make(map[uint]float64, len(rows))
	for _, r := range rows {
		out[r.LabourID] = r.Total
	}
	return out, nil
}

// findLabour loads a labour record on a project the user can access.
func findLabour(db *gorm.DB, user auth.UserCredential, id uint) (*models.Labour, error) {
	var l models.Labour
	err := db.Where("id = ? AND company_id = ?", id, user.CompanyID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Labour not found")
	}
	if err != nil {
		return nil, err
	}
	if _, err := projects.Accessible(db, user, l.ProjectID); err != nil {
		return nil, err
	}
	return &l, nil
}

func auditLabour(tx *gorm.DB, user auth.UserCredential, entity string, id uint, action models.AuditAction, desc string, before, after any) error {
	return audit.WriteLog(tx, audit.LogOptions{
		CompanyID:   user.CompanyID,
		UserID:      user.UserID,
		UserName:    audit.UserName(tx, user.UserID),
		EntityType:  entity,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

// GET /api/labours?projectId=
func ListLaboursHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		projectID, err := httpx.QueryID(c, "projectId")
		if err != nil {
			return err
		}

		visible := projects.Scope(db.Model(&models.Project{}), user).Select("projects.id")
		q := db.Where("company_id = ? AND project_id IN (?)", user.CompanyID, visible)
		if projectID != 0 {
			if _, err := projects.Accessible(db, user, projectID); err != nil {
				return err
			}
			q = q.Where("project_id = ?", projectID)
		}

		var labours []models.Labour
		if err := q.Order("name").Find(&labours).Error; err != nil {
			return err
		}

		ids := make([]uint, len(labours))
		for i, l := range labours {
			ids[i] = l.ID
		}
		totals, err := totalsByLabour(db, ids)
		if err != nil {
			return err
		}

		out := make([]LabourView, len(labours))
		for i, l := range labours {
			out[i] = LabourView{Labour: l, TotalPaid: totals[l.ID]}
		}
		return httpx.OK(c, out)
	}
}

// POST /api/labours
func CreateLabourHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body LabourRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if err := body.Validate(); err != nil {
			return err
		}
		if _, err := projects.Accessible(db, user, body.ProjectID); err != nil {
			return err
		}

		l := models.Labour{
			CompanyID: user.CompanyID,
			ProjectID: body.ProjectID,
			Name:      body.Name,
			Phone:     strings.TrimSpace(body.Phone),
			Skill:     strings.TrimSpace(body.Skill),
			DailyWage: body.DailyWage,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&l).Error; err != nil {
				return err
			}
			return auditLabour(tx, user, "labour", l.ID, models.AuditActionCreate, "Added labour "+l.Name, nil, l)
		})
		if err != nil {
			return err
		}
		return httpx.Created(c, LabourView{Labour: l})
	}
}

// PUT /api/labours/:id
func UpdateLabourHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body LabourRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		if err := body.Validate(); err != nil {
			return err
		}

		l, err := findLabour(db, user, id)
		if err != nil {
			return err
		}
		if body.ProjectID != l.ProjectID {
			if _, err := projects.Accessible(db, user, body.ProjectID); err != nil {
				return err
			}
		}
		before := *l
		l.ProjectID = body.ProjectID
		l.Name = body.Name
		l.Phone = strings.TrimSpace(body.Phone)
		l.Skill = strings.TrimSpace(body.Skill)
		l.DailyWage = body.DailyWage

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(l).Error; err != nil {
				return err
			}
			return auditLabour(tx, user, "labour", l.ID, models.AuditActionUpdate, "Updated labour "+l.Name, before, l)
		})
		if err != nil {
			return err
		}
		totals, err := totalsByLabour(db, []uint{l.ID})
		if err != nil {
			return err
		}
		return httpx.OK(c, LabourView{Labour: *l, TotalPaid: totals[l.ID]})
	}
}

// DELETE /api/labours/:id
// Payments go with the labour record.
func DeleteLabourHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		l, err := findLabour(db, user, id)
		if err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("labour_id = ?", l.ID).Delete(&models.LabourPayment{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(l).Error; err != nil {
				return err
			}
			return auditLabour(tx, user, "labour", l.ID, models.AuditActionDelete, "Deleted labour "+l.Name, l, nil)
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}

// GET /api/labours/:id/payments
func ListPaymentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		l, err := findLabour(db, user, id)
		if err != nil {
			return err
		}

		var payments []models.LabourPayment
		if err := db.Where("labour_id = ?", l.ID).Order("date DESC, id DESC").Find(&payments).Error; err != nil {
			return err
		}
		total := 0.0
		for _, p := range payments {
			total += p.Amount
		}
		return c.JSON(fiber.Map{"success": true, "data": payments, "totalPaid": total})
	}
}

// POST /api/labours/:id/payments
func CreatePaymentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body PaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Mode = strings.ToLower(strings.TrimSpace(body.Mode))
		if err := body.Validate(); err != nil {
			return err
		}
		date, err := httpx.ParseDate(body.Date, time.Now())
		if err != nil {
			return err
		}
		l, err := findLabour(db, user, id)
		if err != nil {
			return err
		}

		p := models.LabourPayment{
			LabourID: l.ID,
			Amount:   body.Amount,
			Date:     date,
			Mode:     body.Mode,
			Notes:    strings.TrimSpace(body.Notes),
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			return auditLabour(tx, user, "labour_payment", p.ID, models.AuditActionCreate, "Paid "+l.Name, nil, p)
		})
		if err != nil {
			return err
		}
		return httpx.Created(c, p)
	}
}

// DELETE /api/labour-payments/:id
func DeletePaymentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		var p models.LabourPayment
		if err := db.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Payment not found")
			}
			return err
		}
		l, err := findLabour(db, user, p.LabourID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.NotFound("Payment not found")
			}
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&p).Error; err != nil {
				return err
			}
			return auditLabour(tx, user, "labour_payment", p.ID, models.AuditActionDelete, "Deleted payment to "+l.Name, p, nil)
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}
