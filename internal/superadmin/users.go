// Package superadmin is the platform operator console: it provisions users
// across companies and exports a company's data on request.
package superadmin

import (
	"errors"
	"strings"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var roleRule = validation.In(models.RoleAdmin, models.RoleSiteEngineer).Error("must be Admin or Site_Engineer")

type CreateUserRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Password    string          `json:"password"`
	Role        models.UserRole `json:"role"`
	CompanyID   uint            `json:"companyId"`
	CompanyName string          `json:"companyName"` // creates a new company when companyId is absent
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(auth.MinPasswordLength, 72)),
		validation.Field(&r.Role, validation.Required, roleRule),
		validation.Field(&r.CompanyName,
			validation.When(r.CompanyID == 0, validation.Required.Error("companyId or companyName is required")),
			validation.Length(0, 150)),
	)
}

// UpdateUserRequest carries only the fields to change.
type UpdateUserRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email"`
	Phone    *string          `json:"phone"`
	Role     *models.UserRole `json:"role"`
	Active   *bool            `json:"active"`
	Password *string          `json:"password"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.Role, validation.NilOrNotEmpty, roleRule),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.Length(auth.MinPasswordLength, 72)),
	)
}

func emailTaken(tx *gorm.DB, email string, exceptID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("This email is already registered")
	}
	return nil
}

func findUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.Preload("Company").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// syncEngineer keeps the Engineer profile in step with a user's role:
// Site_Engineers have one, Admins do not.
func syncEngineer(tx *gorm.DB, user *models.User) error {
	var engineer models.Engineer
	err := tx.Where("user_id = ?", user.ID).First(&engineer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if user.Role != models.RoleSiteEngineer {
			return nil
		}
		engineer = models.Engineer{
			CompanyID: user.CompanyID,
			UserID:    user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Phone:     user.Phone,
		}
		return tx.Create(&engineer).Error
	case err != nil:
		return err
	}

	if user.Role != models.RoleSiteEngineer {
		if err := tx.Model(&engineer).Association("Projects").Clear(); err != nil {
			return err
		}
		return tx.Delete(&engineer).Error
	}
	return tx.Model(&engineer).Updates(map[string]any{
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
	}).Error
}

// GET /api/superadmin/companies
func ListCompaniesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var companies []models.Company
		if err := db.Order("name").Find(&companies).Error; err != nil {
			return err
		}
		return httpx.OK(c, companies)
	}
}

// GET /api/superadmin/users
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Preload("Company").Order("company_id, name")
		companyID, err := httpx.QueryID(c, "companyId")
		if err != nil {
			return err
		}
		if companyID != 0 {
			q = q.Where("company_id = ?", companyID)
		}
		var users []models.User
		if err := q.Find(&users).Error; err != nil {
			return err
		}
		return httpx.OK(c, users)
	}
}

// POST /api/superadmin/create-user
func CreateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Email = auth.NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)
		body.CompanyName = strings.TrimSpace(body.CompanyName)
		if err := body.Validate(); err != nil {
			return err
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			Phone:        strings.TrimSpace(body.Phone),
			PasswordHash: hash,
			Role:         body.Role,
			Active:       true,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := emailTaken(tx, user.Email, 0); err != nil {
				return err
			}

			var company models.Company
			if body.CompanyID != 0 {
				if err := tx.First(&company, body.CompanyID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.NotFound("Company not found")
					}
					return err
				}
			} else {
				company.Name = body.CompanyName
				if err := tx.Create(&company).Error; err != nil {
					return err
				}
			}

			user.CompanyID = company.ID
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			user.Company = &company
			return syncEngineer(tx, &user)
		})
		if err != nil {
			return err
		}
		return httpx.Created(c, user)
	}
}

// PUT /api/superadmin/update-user/:id
func UpdateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Email != nil {
			*body.Email = auth.NormalizeEmail(*body.Email)
		}
		if body.Name != nil {
			*body.Name = strings.TrimSpace(*body.Name)
		}
		if err := body.Validate(); err != nil {
			return err
		}

		var user *models.User
		err = db.Transaction(func(tx *gorm.DB) error {
			if user, err = findUser(tx, id); err != nil {
				return err
			}

			changes := map[string]any{}
			if body.Name != nil {
				user.Name = *body.Name
				changes["name"] = user.Name
			}
			if body.Email != nil && *body.Email != user.Email {
				if err := emailTaken(tx, *body.Email, user.ID); err != nil {
					return err
				}
				user.Email = *body.Email
				changes["email"] = user.Email
			}
			if body.Phone != nil {
				user.Phone = strings.TrimSpace(*body.Phone)
				changes["phone"] = user.Phone
			}
			if body.Role != nil {
				user.Role = *body.Role
				changes["role"] = user.Role
			}
			if body.Active != nil {
				user.Active = *body.Active
				changes["active"] = user.Active
			}
			if body.Password != nil {
				hash, err := auth.HashPassword(*body.Password)
				if err != nil {
					return err
				}
				changes["password_hash"] = hash
			}
			if len(changes) == 0 {
				return nil
			}
			if err := tx.Model(user).Updates(changes).Error; err != nil {
				return err
			}
			return syncEngineer(tx, user)
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, user)
	}
}

// DELETE /api/superadmin/delete-user/:id
// Users that still own material requests cannot be removed; deactivate them instead.
func DeleteUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			user, err := findUser(tx, id)
			if err != nil {
				return err
			}

			var requests int64
			if err := tx.Model(&models.MaterialRequest{}).Where("employee_id = ?", user.ID).Count(&requests).Error; err != nil {
				return err
			}
			if requests > 0 {
				return apperr.Conflict("User has material requests, deactivate the account instead")
			}

			// dropping the role removes the engineer profile and its assignments
			user.Role = models.RoleAdmin
			if err := syncEngineer(tx, user); err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Notification{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.User{}, user.ID).Error
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.Map{"id": id})
	}
}
