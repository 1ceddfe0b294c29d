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
	"interiors-erp/internal/metrics"
	"interiors-erp/internal/models"
	"interiors-erp/internal/notify"
	"interiors-erp/internal/projects"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectMaterialView is a ProjectMaterial with its derived remaining quantity.
type ProjectMaterialView struct {
	models.ProjectMaterial
	Remaining float64 `json:"remaining"`
}

func newView(pm models.ProjectMaterial) ProjectMaterialView {
	return ProjectMaterialView{ProjectMaterial: pm, Remaining: Remaining(pm.Assigned, pm.Used)}
}

type UsageInput struct {
	ProjectID  uint
	MaterialID uint
	Quantity   float64
	Remarks    string
	Date       time.Time
}

type UsageEdit struct {
	Quantity float64
	Remarks  string
	// Zero keeps the current date.
	Date time.Time
}

// UsageResult is what a usage-log write returns to the caller.
type UsageResult struct {
	Log        models.UsageLog     `json:"log"`
	Allocation ProjectMaterialView `json:"allocation"`
	Warning    string              `json:"-"`
}

// UsageService keeps ProjectMaterial.used equal to the sum of its usage logs.
// Every write changes the log and the counter in one transaction, and the
// counter only moves through a conditional UPDATE so concurrent writers
// cannot push used above assigned.
type UsageService struct {
	db           *gorm.DB
	warningRatio float64
}

func NewUsageService(db *gorm.DB, warningRatio float64) *UsageService {
	return &UsageService{db: db, warningRatio: warningRatio}
}

func findAllocation(tx *gorm.DB, projectID, materialID uint) (*models.ProjectMaterial, error) {
	var pm models.ProjectMaterial
	err := tx.Preload("Material").
		Where("project_id = ? AND material_id = ?", projectID, materialID).
		First(&pm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Material is not allocated to this project")
	}
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// addUsed moves used by delta only if the result stays within [0, assigned].
func addUsed(tx *gorm.DB, pmID uint, delta float64) (bool, error) {
	res := tx.Model(&models.ProjectMaterial{}).
		Where("id = ? AND used + ? <= assigned + ? AND used + ? >= ?", pmID, delta, epsilon, delta, -epsilon).
		Update("used", gorm.Expr("used + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *UsageService) warn(tx *gorm.DB, user auth.UserCredential, project *models.Project, before, after models.ProjectMaterial) (string, error) {
	unit := after.Material.Unit
	warning := UsageWarning(after.Assigned, after.Used, s.warningRatio, unit)
	if warning == "" {
		return "", nil
	}
	// admins hear about it once, when the threshold is first crossed
	if UsageWarning(before.Assigned, before.Used, s.warningRatio, unit) == "" {
		msg := fmt.Sprintf("%s on %s: %s", after.Material.Name, project.Name, warning)
		if err := notify.ToAdmins(tx, user.CompanyID, notify.KindLowStock, "Low material stock", msg); err != nil {
			return "", err
		}
	}
	return warning, nil
}

// Create logs consumption against an existing allocation.
func (s *UsageService) Create(ctx context.Context, user auth.UserCredential, in UsageInput) (*UsageResult, error) {
	if err := checkPositive(in.Quantity); err != nil {
		return nil, err
	}

	var result UsageResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := projects.Accessible(tx, user, in.ProjectID)
		if err != nil {
			return err
		}
		before, err := findAllocation(tx, in.ProjectID, in.MaterialID)
		if err != nil {
			return err
		}

		ok, err := addUsed(tx, before.ID, in.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			// report against the state that made the update miss
			var current models.ProjectMaterial
			if err := tx.First(&current, before.ID).Error; err != nil {
				return err
			}
			if err := CheckUsage(current.Assigned, current.Used, in.Quantity); err != nil {
				return err
			}
			return apperr.Conflict("Allocation changed while logging usage, please retry")
		}

		log := models.UsageLog{
			ProjectID:         in.ProjectID,
			MaterialID:        in.MaterialID,
			ProjectMaterialID: before.ID,
			Quantity:          in.Quantity,
			Date:              in.Date,
			Remarks:           strings.TrimSpace(in.Remarks),
			LoggedByID:        user.UserID,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		after, err := findAllocation(tx, in.ProjectID, in.MaterialID)
		if err != nil {
			return err
		}
		result.Log = log
		result.Allocation = newView(*after)

		if err := audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   user.CompanyID,
			UserID:      user.UserID,
			UserName:    audit.UserName(tx, user.UserID),
			EntityType:  "usage_log",
			EntityID:    log.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Logged %s %s of %s on %s", formatQty(log.Quantity), after.Material.Unit, after.Material.Name, project.Name),
			After:       log,
		}); err != nil {
			return err
		}

		result.Warning, err = s.warn(tx, user, project, *before, *after)
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			metrics.UsageLogs.WithLabelValues("over_allocated").Inc()
		}
		return nil, err
	}
	metrics.UsageLogs.WithLabelValues("created").Inc()
	return &result, nil
}

// findLog loads a usage log the user may change. Site engineers may only
// touch their own entries on projects they are assigned to. The row is locked
// so concurrent edits and deletes of one log apply their deltas in turn.
func findLog(tx *gorm.DB, user auth.UserCredential, id uint) (*models.UsageLog, *models.Project, error) {
	var log models.UsageLog
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&log, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.NotFound("Usage log not found")
	}
	if err != nil {
		return nil, nil, err
	}
	project, err := projects.Accessible(tx, user, log.ProjectID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil, apperr.NotFound("Usage log not found")
		}
		return nil, nil, err
	}
	if !user.IsAdmin() && log.LoggedByID != user.UserID {
		return nil, nil, apperr.Forbidden("You can only change your own usage logs")
	}
	return &log, project, nil
}

// Edit changes a log's quantity; only the difference draws on remaining stock.
func (s *UsageService) Edit(ctx context.Context, user auth.UserCredential, id uint, in UsageEdit) (*UsageResult, error) {
	if err := checkPositive(in.Quantity); err != nil {
		return nil, err
	}

	var result UsageResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		log, project, err := findLog(tx, user, id)
		if err != nil {
			return err
		}
		before, err := findAllocation(tx, log.ProjectID, log.MaterialID)
		if err != nil {
			return err
		}
		beforeLog := *log

		delta := in.Quantity - log.Quantity
		ok, err := addUsed(tx, before.ID, delta)
		if err != nil {
			return err
		}
		if !ok {
			var current models.ProjectMaterial
			if err := tx.First(&current, before.ID).Error; err != nil {
				return err
			}
			if err := CheckUsageEdit(current.Assigned, current.Used, log.Quantity, in.Quantity); err != nil {
				return err
			}
			return apperr.Conflict("Allocation changed while editing usage, please retry")
		}

		log.Quantity = in.Quantity
		log.Remarks = strings.TrimSpace(in.Remarks)
		if !in.Date.IsZero() {
			log.Date = in.Date
		}
		if err := tx.Save(log).Error; err != nil {
			return err
		}

		after, err := findAllocation(tx, log.ProjectID, log.MaterialID)
		if err != nil {
			return err
		}
		result.Log = *log
		result.Allocation = newView(*after)

		if err := audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   user.CompanyID,
			UserID:      user.UserID,
			UserName:    audit.UserName(tx, user.UserID),
			EntityType:  "usage_log",
			EntityID:    log.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Changed usage of %s on %s from %s to %s", after.Material.Name, project.Name, formatQty(beforeLog.Quantity), formatQty(log.Quantity)),
			Before:      beforeLog,
			After:       log,
		}); err != nil {
			return err
		}

		result.Warning, err = s.warn(tx, user, project, *before, *after)
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			metrics.UsageLogs.WithLabelValues("over_allocated").Inc()
		}
		return nil, err
	}
	metrics.UsageLogs.WithLabelValues("updated").Inc()
	return &result, nil
}

// Delete removes a log and gives its quantity back to the allocation.
func (s *UsageService) Delete(ctx context.Context, user auth.UserCredential, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		log, project, err := findLog(tx, user, id)
		if err != nil {
			return err
		}
		pm, err := findAllocation(tx, log.ProjectID, log.MaterialID)
		if err != nil {
			return err
		}

		ok, err := addUsed(tx, pm.ID, -log.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("Used quantity is out of sync with usage logs")
		}
		if err := tx.Delete(log).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   user.CompanyID,
			UserID:      user.UserID,
			UserName:    audit.UserName(tx, user.UserID),
			EntityType:  "usage_log",
			EntityID:    log.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Deleted usage of %s %s on %s", formatQty(log.Quantity), pm.Material.Name, project.Name),
			Before:      log,
		})
	})
	if err != nil {
		return err
	}
	metrics.UsageLogs.WithLabelValues("deleted").Inc()
	return nil
}

type UsageFilter struct {
	ProjectID  uint
	MaterialID uint
}

// List returns logs on projects the user can see, newest first.
func (s *UsageService) List(ctx context.Context, user auth.UserCredential, f UsageFilter) ([]models.UsageLog, error) {
	db := s.db.WithContext(ctx)
	if f.ProjectID != 0 {
		if _, err := projects.Accessible(db, user, f.ProjectID); err != nil {
			return nil, err
		}
	}

	visible := projects.Scope(db.Model(&models.Project{}), user).Select("projects.id")
	q := db.Preload("Material").Where("project_id IN (?)", visible)
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.MaterialID != 0 {
		q = q.Where("material_id = ?", f.MaterialID)
	}

	var logs []models.UsageLog
	if err := q.Order("date DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ProjectMaterials lists a project's allocations with remaining computed.
func (s *UsageService) ProjectMaterials(ctx context.Context, user auth.UserCredential, projectID uint) ([]ProjectMaterialView, error) {
	db := s.db.WithContext(ctx)
	if _, err := projects.Accessible(db, user, projectID); err != nil {
		return nil, err
	}

	var rows []models.ProjectMaterial
	if err := db.Preload("Material").Where("project_id = ?", projectID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]ProjectMaterialView, len(rows))
	for i, pm := range rows {
		views[i] = newView(pm)
	}
	return views, nil
}

// Allocate adds quantity to a project's allocation of a catalog material,
// creating the row on first use.
func (s *UsageService) Allocate(ctx context.Context, user auth.UserCredential, projectID, materialID uint, qty float64) (*ProjectMaterialView, error) {
	if err := checkPositive(qty); err != nil {
		return nil, err
	}

	var view ProjectMaterialView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := projects.Accessible(tx, user, projectID)
		if err != nil {
			return err
		}
		material, err := findMaterial(tx, user.CompanyID, materialID)
		if err != nil {
			return err
		}
		pm, err := allocate(tx, project.ID, material.ID, qty)
		if err != nil {
			return err
		}
		view = newView(*pm)

		return audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   user.CompanyID,
			UserID:      user.UserID,
			UserName:    audit.UserName(tx, user.UserID),
			EntityType:  "project_material",
			EntityID:    pm.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Allocated %s %s of %s to %s", formatQty(qty), material.Unit, material.Name, project.Name),
			After:       pm,
		})
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}
