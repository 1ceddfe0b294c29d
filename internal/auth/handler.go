package auth

import (
	"strings"

	"interiors-erp/internal/config"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SignupRequest struct {
	CompanyName string `json:"companyName"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CompanyName, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 72)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Role        models.UserRole `json:"role"`
	CompanyID   uint            `json:"companyId"`
	CompanyName string          `json:"companyName,omitempty"`
}

func NewUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
	if u.Company != nil {
		resp.CompanyName = u.Company.Name
	}
	return resp
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// POST /api/auth/signup
// Registers a new company together with its first Admin.
func SignupHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SignupRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Email = NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)
		body.CompanyName = strings.TrimSpace(body.CompanyName)
		if err := body.Validate(); err != nil {
			return err
		}

		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", body.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "This email is already registered")
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password could not be hashed")
		}

		company := models.Company{Name: body.CompanyName}
		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			Phone:        strings.TrimSpace(body.Phone),
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			Active:       true,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&company).Error; err != nil {
				return err
			}
			user.CompanyID = company.ID
			return tx.Create(&user).Error
		})
		if err != nil {
			return err
		}
		user.Company = &company

		token, err := GenerateToken(cfg.JWTSecret, cfg.JWTTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"token":   token,
			"user":    NewUserResponse(&user),
		})
	}
}

// POST /api/auth/login
func LoginHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.Email = NormalizeEmail(body.Email)

		var user models.User
		if err := db.Preload("Company").Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email or password is incorrect")
		}
		if !CheckPassword(user.PasswordHash, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "Email or password is incorrect")
		}
		if !user.Active {
			return fiber.NewError(fiber.StatusForbidden, "This account has been deactivated")
		}

		token, err := GenerateToken(cfg.JWTSecret, cfg.JWTTTL, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be created")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"token":   token,
			"user":    NewUserResponse(&user),
		})
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cred, _ := CredentialFrom(c)
		switch v := cred.(type) {
		case SuperAdminCredential:
			return httpx.OK(c, fiber.Map{"email": v.Email, "role": models.RoleSuperAdmin})
		case UserCredential:
			var user models.User
			if err := db.Preload("Company").First(&user, "id = ? AND company_id = ?", v.UserID, v.CompanyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return httpx.OK(c, NewUserResponse(&user))
		default:
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}
	}
}

// POST /api/superadmin/login
func SuperAdminLoginHandler(cfg *config.Config, sessions SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if cfg.SuperAdminEmail == "" || cfg.SuperAdminPasswordHash == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Super admin login is not configured")
		}
		if NormalizeEmail(body.Email) != cfg.SuperAdminEmail || !CheckPassword(cfg.SuperAdminPasswordHash, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "Email or password is incorrect")
		}

		token, err := sessions.Create(c.UserContext(), cfg.SuperAdminEmail, cfg.SuperAdminSessionTTL)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success": true,
			"token":   token,
			"user":    fiber.Map{"email": cfg.SuperAdminEmail, "role": models.RoleSuperAdmin},
		})
	}
}

// POST /api/superadmin/logout
func SuperAdminLogoutHandler(sessions SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := c.Locals(ctxRawTokenKey).(string)
		if err := sessions.Delete(c.UserContext(), token); err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}
