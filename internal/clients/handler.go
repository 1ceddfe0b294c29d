package clients

import (
	"errors"
	"strings"
	"time"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

func (r ClientRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.GSTIN, validation.Length(0, 15)),
	)
}

func (r ClientRequest) apply(cl *models.Client) {
	cl.Name = strings.TrimSpace(r.Name)
	cl.Email = strings.ToLower(strings.TrimSpace(r.Email))
	cl.Phone = strings.TrimSpace(r.Phone)
	cl.Address = strings.TrimSpace(r.Address)
	cl.GSTIN = strings.ToUpper(strings.TrimSpace(r.GSTIN))
}

func findClient(db *gorm.DB, companyID, id uint) (*models.Client, error) {
	var cl models.Client
	err := db.Where("id = ? AND company_id = ?", id, companyID).First(&cl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Client not found")
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// GET /api/clients?q=
func ListClientsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		q := db.Where("company_id = ?", user.CompanyID)
		if s := strings.TrimSpace(c.Query("q")); s != "" {
			q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
		}
		var items []models.Client
		if err := q.Order("name").Find(&items).Error; err != nil {
			return err
		}
		return httpx.OK(c, items)
	}
}

// GET /api/clients/:id
func GetClientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		cl, err := findClient(db, user.CompanyID, id)
		if err != nil {
			return err
		}
		return httpx.OK(c, cl)
	}
}

// POST /api/clients
func CreateClientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}
		cl := models.Client{CompanyID: user.CompanyID}
		body.apply(&cl)
		if err := db.Create(&cl).Error; err != nil {
			return err
		}
		return httpx.Created(c, cl)
	}
}

// PUT /api/clients/:id
func UpdateClientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}
		cl, err := findClient(db, user.CompanyID, id)
		if err != nil {
			return err
		}
		body.apply(cl)
		if err := db.Save(cl).Error; err != nil {
			return err
		}
		return httpx.OK(c, cl)
	}
}

// DELETE /api/clients/:id
// Refused while contracts or projects point at the client.
func DeleteClientHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		cl, err := findClient(db, user.CompanyID, id)
		if err != nil {
			return err
		}

		var contracts, projects int64
		if err := db.Model(&models.Contract{}).Where("client_id = ?", id).Count(&contracts).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Project{}).Where("client_id = ?", id).Count(&projects).Error; err != nil {
			return err
		}
		if contracts > 0 || projects > 0 {
			return apperr.Conflict("Client has contracts or projects and cannot be deleted")
		}
		if err := db.Delete(cl).Error; err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}

var contractStatuses = []any{
	models.ContractDraft, models.ContractActive, models.ContractCompleted, models.ContractTerminated,
}

type ContractRequest struct {
	ClientID  uint                  `json:"clientId"`
	ProjectID *uint                 `json:"projectId"`
	Title     string                `json:"title"`
	Value     float64               `json:"value"`
	StartDate string                `json:"startDate"`
	EndDate   string                `json:"endDate"`
	Status    models.ContractStatus `json:"status"`
	Terms     string                `json:"terms"`
}

func (r ContractRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ClientID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Value, validation.Min(0.0)),
		validation.Field(&r.Status, validation.In(contractStatuses...)),
	)
}

func (r ContractRequest) apply(db *gorm.DB, companyID uint, ct *models.Contract) error {
	if _, err := findClient(db, companyID, r.ClientID); err != nil {
		return err
	}
	if r.ProjectID != nil {
		var n int64
		if err := db.Model(&models.Project{}).Where("id = ? AND company_id = ?", *r.ProjectID, companyID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("Project not found")
		}
	}
	start, err := httpx.ParseDate(r.StartDate, time.Now())
	if err != nil {
		return err
	}
	end, err := httpx.ParseOptionalDate(r.EndDate)
	if err != nil {
		return err
	}
	if end != nil && end.Before(start) {
		return apperr.Validation("End date cannot be before start date")
	}

	ct.ClientID = r.ClientID
	ct.ProjectID = r.ProjectID
	ct.Title = strings.TrimSpace(r.Title)
	ct.Value = r.Value
	ct.StartDate = start
	ct.EndDate = end
	if r.Status != "" {
		ct.Status = r.Status
	}
	ct.Terms = r.Terms
	return nil
}

func findContract(db *gorm.DB, companyID, id uint) (*models.Contract, error) {
	var ct models.Contract
	err := db.Preload("Client").Where("id = ? AND company_id = ?", id, companyID).First(&ct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Contract not found")
	}
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// GET /api/contracts?clientId=&status=
func ListContractsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		clientID, err := httpx.QueryID(c, "clientId")
		if err != nil {
			return err
		}
		q := db.Preload("Client").Where("company_id = ?", user.CompanyID)
		if clientID != 0 {
			q = q.Where("client_id = ?", clientID)
		}
		if s := c.Query("status"); s != "" {
			q = q.Where("status = ?", s)
		}
		var items []models.Contract
		if err := q.Order("start_date DESC").Find(&items).Error; err != nil {
			return err
		}
		return httpx.OK(c, items)
	}
}

// GET /api/contracts/:id
func GetContractHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		ct, err := findContract(db, user.CompanyID, id)
		if err != nil {
			return err
		}
		return httpx.OK(c, ct)
	}
}

// POST /api/contracts
func CreateContractHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body ContractRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}
		ct := models.Contract{CompanyID: user.CompanyID, Status: models.ContractDraft}
		if err := body.apply(db, user.CompanyID, &ct); err != nil {
			return err
		}
		if err := db.Create(&ct).Error; err != nil {
			return err
		}
		return httpx.Created(c, ct)
	}
}

// PUT /api/contracts/:id
func UpdateContractHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ContractRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}
		ct, err := findContract(db, user.CompanyID, id)
		if err != nil {
			return err
		}
		if err := body.apply(db, user.CompanyID, ct); err != nil {
			return err
		}
		ct.Client = nil
		if err := db.Save(ct).Error; err != nil {
			return err
		}
		return httpx.OK(c, ct)
	}
}

// DELETE /api/contracts/:id
func DeleteContractHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		ct, err := findContract(db, user.CompanyID, id)
		if err != nil {
			return err
		}
		if err := db.Delete(&models.Contract{}, ct.ID).Error; err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}
