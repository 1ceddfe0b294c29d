package projects

import (
	"errors"
	"strings"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateEngineerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Designation string `json:"designation"`
	Password    string `json:"password"`
}

func (r CreateEngineerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(auth.MinPasswordLength, 72)),
	)
}

type UpdateEngineerRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Designation string `json:"designation"`
}

func (r UpdateEngineerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

func findEngineer(db *gorm.DB, companyID, id uint) (*models.Engineer, error) {
	var engineer models.Engineer
	if err := db.Where("id = ? AND company_id = ?", id, companyID).First(&engineer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Engineer not found")
		}
		return nil, err
	}
	return &engineer, nil
}

// GET /api/engineers
func ListEngineersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var engineers []models.Engineer
		if err := db.Preload("Projects").Where("company_id = ?", user.CompanyID).Order("name").Find(&engineers).Error; err != nil {
			return err
		}
		return httpx.OK(c, engineers)
	}
}

// POST /api/engineers
// Creates the Site_Engineer login and its profile in one transaction.
func CreateEngineerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body CreateEngineerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Email = auth.NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)
		if err := body.Validate(); err != nil {
			return err
		}

		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", body.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("This email is already registered")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return err
		}

		engineer := models.Engineer{
			CompanyID:   user.CompanyID,
			Name:        body.Name,
			Email:       body.Email,
			Phone:       strings.TrimSpace(body.Phone),
			Designation: strings.TrimSpace(body.Designation),
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			login := models.User{
				CompanyID:    user.CompanyID,
				Name:         body.Name,
				Email:        body.Email,
				Phone:        engineer.Phone,
				PasswordHash: hash,
				Role:         models.RoleSiteEngineer,
				Active:       true,
			}
			if err := tx.Create(&login).Error; err != nil {
				return err
			}
			engineer.UserID = login.ID
			return tx.Create(&engineer).Error
		})
		if err != nil {
			return err
		}
		return httpx.Created(c, engineer)
	}
}

// PUT /api/engineers/:id
func UpdateEngineerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateEngineerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}

		engineer, err := findEngineer(db, user.CompanyID, id)
		if err != nil {
			return err
		}
		engineer.Name = strings.TrimSpace(body.Name)
		engineer.Phone = strings.TrimSpace(body.Phone)
		engineer.Designation = strings.TrimSpace(body.Designation)

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(engineer).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).Where("id = ?", engineer.UserID).
				Updates(map[string]any{"name": engineer.Name, "phone": engineer.Phone}).Error
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, engineer)
	}
}

// DELETE /api/engineers/:id
// Removes the profile and deactivates the login; the user row stays because
// usage logs and requests point at it.
func DeleteEngineerHandler(db *gorm.DB, files *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		engineer, err := findEngineer(db, user.CompanyID, id)
		if err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(engineer).Association("Projects").Clear(); err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", engineer.UserID).Update("active", false).Error; err != nil {
				return err
			}
			return tx.Delete(engineer).Error
		})
		if err != nil {
			return err
		}
		_ = files.Remove(engineer.PhotoPath)
		return httpx.OK(c, nil)
	}
}

// POST /api/engineers/:id/photo (multipart field "photo")
func UploadEngineerPhotoHandler(db *gorm.DB, files *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		engineer, err := findEngineer(db, user.CompanyID, id)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("photo")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "photo file is required")
		}
		rel, err := files.Save(c, fh, "engineers", storage.ImageExtensions)
		if err != nil {
			return err
		}

		old := engineer.PhotoPath
		if err := db.Model(engineer).Update("photo_path", rel).Error; err != nil {
			_ = files.Remove(rel)
			return err
		}
		_ = files.Remove(old)
		return httpx.OK(c, engineer)
	}
}
