package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interiors-erp/internal/apperr"
	"interiors-erp/internal/audit"
	"interiors-erp/internal/auth"
	"interiors-erp/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewMaterialCode returns a catalog code such as MAT-3F9A12BC.
func NewMaterialCode() string {
	return "MAT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

type MaterialInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	DefaultRate float64 `json:"defaultRate"`
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
}

func (in MaterialInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&in.Unit, validation.Required, validation.Length(1, 20)),
		validation.Field(&in.DefaultRate, validation.Min(0.0)),
	)
}

func (in MaterialInput) trimmed() MaterialInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Vendor = strings.TrimSpace(in.Vendor)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func findMaterial(tx *gorm.DB, companyID, id uint) (*models.Material, error) {
	var m models.Material
	err := tx.Where("id = ? AND company_id = ?", id, companyID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Material not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// allocate adds qty to the (project, material) allocation with a single
// upsert so two approvals for the same pair cannot create duplicate rows.
func allocate(tx *gorm.DB, projectID, materialID uint, qty float64) (*models.ProjectMaterial, error) {
	pm := models.ProjectMaterial{ProjectID: projectID, MaterialID: materialID, Assigned: qty}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "material_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"assigned":   gorm.Expr("project_materials.assigned + EXCLUDED.assigned"),
			"updated_at": time.Now(),
		}),
	}).Create(&pm).Error
	if err != nil {
		return nil, fmt.Errorf("allocate material: %w", err)
	}

	var out models.ProjectMaterial
	if err := tx.Preload("Material").
		Where("project_id = ? AND material_id = ?", projectID, materialID).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalog manages the company-wide material list.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

type CatalogFilter struct {
	Category string
	Search   string
}

func (c *Catalog) List(ctx context.Context, companyID uint, f CatalogFilter) ([]models.Material, error) {
	q := c.db.WithContext(ctx).Where("company_id = ?", companyID)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(material_code) LIKE ?)", like, like)
	}
	var items []models.Material
	if err := q.Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Catalog) Create(ctx context.Context, user auth.UserCredential, in MaterialInput) (*models.Material, error) {
	in = in.trimmed()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := models.Material{
		CompanyID:    user.CompanyID,
		MaterialCode: NewMaterialCode(),
		Name:         in.Name,
		Category:     in.Category,
		Unit:         in.Unit,
		DefaultRate:  in.DefaultRate,
		Vendor:       in.Vendor,
		Description:  in.Description,
	}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   user.CompanyID,
			UserID:      user.UserID,
			UserName:    audit.UserName(tx, user.UserID),
			EntityType:  "material",
			EntityID:    m.ID,
			Action:      models.AuditActionCreate,
			Description: "Added material " + m.Name,
			After:       m,
		})
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// lockedFieldsChanged reports whether an edit touches anything other than
// rate and description.
func lockedFieldsChanged(m *models.Material, in MaterialInput) bool {
	return m.Name != in.Name || m.Category != in.Category || m.Unit != in.Unit || m.Vendor != in.Vendor
}

// Update edits a catalog entry. Once usage has been logged against it only
// defaultRate and description can change.
func (c *Catalog) Update(ctx context.Context, user auth.UserCredential, id uint, in MaterialInput) (*models.Material, error) {
	in = in.trimmed()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var m *models.Material
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = findMaterial(tx, user.CompanyID, id)
		if err != nil {
			return err
		}
		before := *m

		var used int64
		if err := tx.Model(&models.UsageLog{}).Where("material_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 && lockedFieldsChanged(m, in) {
			return apperr.Validation("Material has usage logs, only default rate and description can be changed")
		}

		m.Name = in.Name
		m.Category = in.Category
		m.Unit = in.Unit
		m.Vendor = in.Vendor
		m.DefaultRate = in.DefaultRate
		m.Description = in.Description
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   user.CompanyID,
			UserID:      user.UserID,
			UserName:    audit.UserName(tx, user.UserID),
			EntityType:  "material",
			EntityID:    m.ID,
			Action:      models.AuditActionUpdate,
			Description: "Updated material " + m.Name,
			Before:      before,
			After:       m,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a catalog entry that no project has been allocated.
func (c *Catalog) Delete(ctx context.Context, user auth.UserCredential, id uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findMaterial(tx, user.CompanyID, id)
		if err != nil {
			return err
		}
		var allocations int64
		if err := tx.Model(&models.ProjectMaterial{}).Where("material_id = ?", id).Count(&allocations).Error; err != nil {
			return err
		}
		if allocations > 0 {
			return apperr.Conflict("Material is allocated to %d project(s) and cannot be deleted", allocations)
		}
		if err := tx.Delete(m).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   user.CompanyID,
			UserID:      user.UserID,
			UserName:    audit.UserName(tx, user.UserID),
			EntityType:  "material",
			EntityID:    m.ID,
			Action:      models.AuditActionDelete,
			Description: "Deleted material " + m.Name,
			Before:      m,
		})
	})
}
