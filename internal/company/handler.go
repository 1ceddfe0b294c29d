package company

import (
	"strings"

	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UpdateCompanyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	GSTIN   string `json:"gstin"`
}

func (r UpdateCompanyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Address, validation.Length(0, 255)),
		validation.Field(&r.GSTIN, validation.Length(0, 15)),
	)
}

// GET /api/company
func GetCompanyHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var company models.Company
		if err := db.First(&company, user.CompanyID).Error; err != nil {
			return err
		}
		return httpx.OK(c, company)
	}
}

// PUT /api/company
func UpdateCompanyHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body UpdateCompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Name = strings.TrimSpace(body.Name)
		body.GSTIN = strings.ToUpper(strings.TrimSpace(body.GSTIN))
		if err := body.Validate(); err != nil {
			return err
		}

		var company models.Company
		if err := db.First(&company, user.CompanyID).Error; err != nil {
			return err
		}
		company.Name = body.Name
		company.Address = strings.TrimSpace(body.Address)
		company.Phone = strings.TrimSpace(body.Phone)
		company.GSTIN = body.GSTIN
		if err := db.Save(&company).Error; err != nil {
			return err
		}
		return httpx.OK(c, company)
	}
}

// POST /api/company/logo (multipart field "logo")
func UploadLogoHandler(db *gorm.DB, files *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		fh, err := c.FormFile("logo")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "logo file is required")
		}

		var company models.Company
		if err := db.First(&company, user.CompanyID).Error; err != nil {
			return err
		}
		rel, err := files.Save(c, fh, "logos", storage.ImageExtensions)
		if err != nil {
			return err
		}

		old := company.LogoPath
		if err := db.Model(&company).Update("logo_path", rel).Error; err != nil {
			_ = files.Remove(rel)
			return err
		}
		_ = files.Remove(old)
		return httpx.OK(c, company)
	}
}
