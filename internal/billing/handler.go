package billing

import (
	"fmt"
	"time"

	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/sheet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/bills?type=&status=&projectId=
func ListBillsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		projectID, err := httpx.QueryID(c, "projectId")
		if err != nil {
			return err
		}
		bills, err := svc.List(c.UserContext(), user.CompanyID, ListFilter{
			Type:      models.BillType(c.Query("type")),
			Status:    models.BillStatus(c.Query("status")),
			ProjectID: projectID,
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, bills)
	}
}

// GET /api/bills/:id
func GetBillHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		bill, err := svc.Get(c.UserContext(), user.CompanyID, id)
		if err != nil {
			return err
		}
		return httpx.OK(c, bill)
	}
}

// POST /api/bills
func CreateBillHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body BillInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		bill, err := svc.Create(c.UserContext(), user, body)
		if err != nil {
			return err
		}
		return httpx.Created(c, bill)
	}
}

// PUT /api/bills/:id
func UpdateBillHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body BillInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		bill, err := svc.Update(c.UserContext(), user, id, body)
		if err != nil {
			return err
		}
		return httpx.OK(c, bill)
	}
}

// PATCH /api/bills/:id
func UpdateBillStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body struct {
			Status models.BillStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		bill, err := svc.SetStatus(c.UserContext(), user, id, body.Status)
		if err != nil {
			return err
		}
		return httpx.OK(c, bill)
	}
}

// DELETE /api/bills/:id
func DeleteBillHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), user, id); err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}

// GET /api/bills/:id/pdf
func BillPDFHandler(db *gorm.DB, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		bill, err := svc.Get(c.UserContext(), user.CompanyID, id)
		if err != nil {
			return err
		}
		var company models.Company
		if err := db.First(&company, user.CompanyID).Error; err != nil {
			return err
		}

		data, err := RenderPDF(company, bill.Bill)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, bill.BillNumber))
		return c.Send(data)
	}
}

// GET /api/bills/export?type=&status=
func ExportBillsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		bills, err := svc.List(c.UserContext(), user.CompanyID, ListFilter{
			Type:   models.BillType(c.Query("type")),
			Status: models.BillStatus(c.Query("status")),
		})
		if err != nil {
			return err
		}
		data, err := ExportXLSX(bills)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, sheet.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bills-%s.xlsx"`, time.Now().Format("20060102")))
		return c.Send(data)
	}
}
