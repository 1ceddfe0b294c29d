package projects

import (
	"strings"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var projectStatuses = []any{
	models.ProjectPlanning, models.ProjectInProgress, models.ProjectOnHold, models.ProjectCompleted,
}

type ProjectRequest struct {
	Name        string               `json:"name"`
	ClientID    *uint                `json:"clientId"`
	Location    string               `json:"location"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   string               `json:"startDate"`
	EndDate     string               `json:"endDate"`
	Budget      float64              `json:"budget"`
	Description string               `json:"description"`
}

func (r ProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Status, validation.In(projectStatuses...)),
		validation.Field(&r.Budget, validation.Min(0.0)),
	)
}

func (r ProjectRequest) apply(db *gorm.DB, companyID uint, p *models.Project) error {
	start, err := httpx.ParseOptionalDate(r.StartDate)
	if err != nil {
		return err
	}
	end, err := httpx.ParseOptionalDate(r.EndDate)
	if err != nil {
		return err
	}
	if start != nil && end != nil && end.Before(*start) {
		return apperr.Validation("End date cannot be before start date")
	}
	if r.ClientID != nil {
		var count int64
		if err := db.Model(&models.Client{}).Where("id = ? AND company_id = ?", *r.ClientID, companyID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("Client not found")
		}
	}

	p.Name = strings.TrimSpace(r.Name)
	p.ClientID = r.ClientID
	p.Location = strings.TrimSpace(r.Location)
	if r.Status != "" {
		p.Status = r.Status
	}
	p.StartDate = start
	p.EndDate = end
	p.Budget = r.Budget
	p.Description = r.Description
	return nil
}

// GET /api/projects?status=
func ListProjectsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		q := Scope(db, user).Preload("Client").Preload("Engineers")
		if status := c.Query("status"); status != "" {
			q = q.Where("projects.status = ?", status)
		}

		var projects []models.Project
		if err := q.Order("projects.created_at DESC").Find(&projects).Error; err != nil {
			return err
		}
		return httpx.OK(c, projects)
	}
}

// GET /api/projects/:id
func GetProjectHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if _, err := Accessible(db, user, id); err != nil {
			return err
		}

		var project models.Project
		if err := db.Preload("Client").Preload("Engineers").First(&project, id).Error; err != nil {
			return err
		}
		return httpx.OK(c, project)
	}
}

// POST /api/projects
func CreateProjectHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		var body ProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}

		project := models.Project{CompanyID: user.CompanyID, Status: models.ProjectPlanning}
		if err := body.apply(db, user.CompanyID, &project); err != nil {
			return err
		}
		if err := db.Create(&project).Error; err != nil {
			return err
		}
		return httpx.Created(c, project)
	}
}

// PUT /api/projects/:id
func UpdateProjectHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}

		project, err := Accessible(db, user, id)
		if err != nil {
			return err
		}
		if err := body.apply(db, user.CompanyID, project); err != nil {
			return err
		}
		if err := db.Omit("Engineers", "Client").Save(project).Error; err != nil {
			return err
		}
		return httpx.OK(c, project)
	}
}

// DELETE /api/projects/:id
// Refused while the project still carries material allocations or bills.
func DeleteProjectHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		project, err := Accessible(db, user, id)
		if err != nil {
			return err
		}

		var allocations, bills int64
		if err := db.Model(&models.ProjectMaterial{}).Where("project_id = ?", id).Count(&allocations).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Bill{}).Where("project_id = ?", id).Count(&bills).Error; err != nil {
			return err
		}
		if allocations > 0 || bills > 0 {
			return apperr.Conflict("Project has material allocations or bills and cannot be deleted")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(project).Association("Engineers").Clear(); err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&models.ProjectDocument{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&models.MaterialRequest{}).Error; err != nil {
				return err
			}
			return tx.Delete(project).Error
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, nil)
	}
}

type AssignEngineersRequest struct {
	EngineerIDs []uint `json:"engineerIds"`
}

// PUT /api/projects/:id/engineers
// Replaces the project's engineer assignments.
func SetEngineersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body AssignEngineersRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		project, err := Accessible(db, user, id)
		if err != nil {
			return err
		}

		var engineers []models.Engineer
		if len(body.EngineerIDs) > 0 {
			if err := db.Where("id IN ? AND company_id = ?", body.EngineerIDs, user.CompanyID).Find(&engineers).Error; err != nil {
				return err
			}
			if len(engineers) != len(uniq(body.EngineerIDs)) {
				return apperr.NotFound("One or more engineers were not found")
			}
		}

		assoc := db.Model(project).Association("Engineers")
		if len(engineers) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(engineers)
		}
		if err != nil {
			return err
		}
		project.Engineers = engineers
		return httpx.OK(c, project)
	}
}

func uniq(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
