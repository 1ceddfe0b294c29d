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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var requestTypes = []any{models.RequestGlobal, models.RequestProject, models.RequestProjectMaterial}

// CanReview reports whether a request in status may still be approved or
// rejected. APPROVED and REJECTED are terminal.
func CanReview(status models.RequestStatus) bool {
	return status == models.RequestPending
}

func ValidateRejection(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperr.Validation("Rejection reason is required")
	}
	return nil
}

type CreateRequestInput struct {
	Type        models.MaterialRequestType `json:"type"`
	Name        string                     `json:"name"`
	Category    string                     `json:"category"`
	Unit        string                     `json:"unit"`
	DefaultRate float64                    `json:"defaultRate"`
	Vendor      string                     `json:"vendor"`
	ProjectID   *uint                      `json:"projectId"`
	MaterialID  *uint                      `json:"materialId"`
	Quantity    *float64                   `json:"quantity"`
}

func positiveQuantity(value any) error {
	q, _ := value.(*float64)
	if q != nil && *q <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}

// Validate applies the per-type field rules. GLOBAL and PROJECT describe a
// new catalog entry; PROJECT and PROJECT_MATERIAL also need a project and a
// quantity; PROJECT_MATERIAL points at an existing material.
func (in CreateRequestInput) Validate() error {
	needsProject := in.Type == models.RequestProject || in.Type == models.RequestProjectMaterial
	describesNew := in.Type == models.RequestGlobal || in.Type == models.RequestProject

	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.Required, validation.In(requestTypes...)),
		validation.Field(&in.Name, validation.When(describesNew, validation.Required, validation.Length(1, 150))),
		validation.Field(&in.Unit, validation.When(describesNew, validation.Required, validation.Length(1, 20))),
		validation.Field(&in.DefaultRate, validation.Min(0.0)),
		validation.Field(&in.ProjectID, validation.When(needsProject, validation.Required)),
		validation.Field(&in.MaterialID, validation.When(in.Type == models.RequestProjectMaterial, validation.Required)),
		validation.Field(&in.Quantity, validation.When(needsProject, validation.Required), validation.By(positiveQuantity)),
	)
}

// RequestService runs the material request lifecycle:
// PENDING -> APPROVED | REJECTED, each transition at most once.
type RequestService struct {
	db *gorm.DB
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

func (s *RequestService) Create(ctx context.Context, user auth.UserCredential, in CreateRequestInput) (*models.MaterialRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	req := models.MaterialRequest{
		CompanyID:   user.CompanyID,
		Type:        in.Type,
		Name:        in.Name,
		Category:    strings.TrimSpace(in.Category),
		Unit:        in.Unit,
		DefaultRate: in.DefaultRate,
		Vendor:      strings.TrimSpace(in.Vendor),
		Status:      models.RequestPending,
		EmployeeID:  user.UserID,
	}
	if in.Type != models.RequestGlobal {
		req.ProjectID = in.ProjectID
		req.Quantity = in.Quantity
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.ProjectID != nil {
			if _, err := projects.Accessible(tx, user, *req.ProjectID); err != nil {
				return err
			}
		}
		if in.Type == models.RequestProjectMaterial {
			m, err := findMaterial(tx, user.CompanyID, *in.MaterialID)
			if err != nil {
				return err
			}
			req.MaterialID = &m.ID
			req.Name, req.Category, req.Unit = m.Name, m.Category, m.Unit
			req.DefaultRate, req.Vendor = m.DefaultRate, m.Vendor
		}

		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		return notify.ToAdmins(tx, user.CompanyID, notify.KindRequestSubmitted,
			"New material request", fmt.Sprintf("%s request for %s is waiting for review", req.Type, req.Name))
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

type RequestFilter struct {
	Status models.RequestStatus
	Type   models.MaterialRequestType
}

// List shows admins every request of the company and everyone else their own.
func (s *RequestService) List(ctx context.Context, user auth.UserCredential, f RequestFilter) ([]models.MaterialRequest, error) {
	q := s.db.WithContext(ctx).
		Preload("Project").
		Preload("Employee").
		Where("company_id = ?", user.CompanyID)
	if !user.IsAdmin() {
		q = q.Where("employee_id = ?", user.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var items []models.MaterialRequest
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// lockPending loads the request FOR UPDATE and refuses anything not PENDING.
// Concurrent reviewers serialize on the row lock, so the loser sees the
// terminal status and nothing is written twice.
func lockPending(tx *gorm.DB, companyID, id uint) (*models.MaterialRequest, error) {
	var req models.MaterialRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Material request not found")
	}
	if err != nil {
		return nil, err
	}
	if !CanReview(req.Status) {
		return nil, apperr.Validation("Request has already been %s", strings.ToLower(string(req.Status)))
	}
	return &req, nil
}

// markReviewed moves the request out of PENDING. The status guard in the
// WHERE clause makes a second transition a no-op even without the lock.
func markReviewed(tx *gorm.DB, req *models.MaterialRequest, updates map[string]any) error {
	res := tx.Model(&models.MaterialRequest{}).
		Where("id = ? AND status = ?", req.ID, models.RequestPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Validation("Request is no longer pending")
	}
	return tx.First(req, req.ID).Error
}

func (s *RequestService) createMaterial(tx *gorm.DB, req *models.MaterialRequest) (*models.Material, error) {
	m := models.Material{
		CompanyID:    req.CompanyID,
		MaterialCode: NewMaterialCode(),
		Name:         req.Name,
		Category:     req.Category,
		Unit:         req.Unit,
		DefaultRate:  req.DefaultRate,
		Vendor:       req.Vendor,
	}
	if err := tx.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Approve applies the request's effect and marks it APPROVED, all in one
// transaction: GLOBAL adds a catalog entry, PROJECT adds one and allocates
// it, PROJECT_MATERIAL allocates an existing entry.
func (s *RequestService) Approve(ctx context.Context, reviewer auth.UserCredential, id uint, note string) (*models.MaterialRequest, error) {
	var req *models.MaterialRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = lockPending(tx, reviewer.CompanyID, id)
		if err != nil {
			return err
		}
		before := *req

		if req.Type != models.RequestGlobal && (req.ProjectID == nil || req.Quantity == nil) {
			return apperr.Validation("Request has no project or quantity to allocate")
		}

		var material *models.Material
		switch req.Type {
		case models.RequestGlobal:
			material, err = s.createMaterial(tx, req)
		case models.RequestProject:
			if material, err = s.createMaterial(tx, req); err == nil {
				_, err = allocate(tx, *req.ProjectID, material.ID, *req.Quantity)
			}
		case models.RequestProjectMaterial:
			if req.MaterialID == nil {
				return apperr.Validation("Request does not reference a material")
			}
			if material, err = findMaterial(tx, req.CompanyID, *req.MaterialID); err == nil {
				_, err = allocate(tx, *req.ProjectID, material.ID, *req.Quantity)
			}
		default:
			return apperr.Validation("Unknown request type %q", req.Type)
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if err := markReviewed(tx, req, map[string]any{
			"status":             models.RequestApproved,
			"review_date":        now,
			"reviewed_by_id":     reviewer.UserID,
			"review_note":        strings.TrimSpace(note),
			"result_material_id": material.ID,
		}); err != nil {
			return err
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   reviewer.CompanyID,
			UserID:      reviewer.UserID,
			UserName:    audit.UserName(tx, reviewer.UserID),
			EntityType:  "material_request",
			EntityID:    req.ID,
			Action:      models.AuditActionApprove,
			Description: fmt.Sprintf("Approved %s request for %s", req.Type, req.Name),
			Before:      before,
			After:       req,
		}); err != nil {
			return err
		}
		return notify.ToUser(tx, req.CompanyID, req.EmployeeID, notify.KindRequestApproved,
			"Material request approved", fmt.Sprintf("Your request for %s was approved", req.Name))
	})
	if err != nil {
		return nil, err
	}
	metrics.RequestsReviewed.WithLabelValues("approved").Inc()
	return req, nil
}

// Reject marks a pending request REJECTED. A reason is mandatory.
func (s *RequestService) Reject(ctx context.Context, reviewer auth.UserCredential, id uint, reason string) (*models.MaterialRequest, error) {
	if err := ValidateRejection(reason); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	var req *models.MaterialRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = lockPending(tx, reviewer.CompanyID, id)
		if err != nil {
			return err
		}
		before := *req

		if err := markReviewed(tx, req, map[string]any{
			"status":           models.RequestRejected,
			"review_date":      time.Now(),
			"reviewed_by_id":   reviewer.UserID,
			"rejection_reason": reason,
		}); err != nil {
			return err
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			CompanyID:   reviewer.CompanyID,
			UserID:      reviewer.UserID,
			UserName:    audit.UserName(tx, reviewer.UserID),
			EntityType:  "material_request",
			EntityID:    req.ID,
			Action:      models.AuditActionReject,
			Description: fmt.Sprintf("Rejected %s request for %s: %s", req.Type, req.Name, reason),
			Before:      before,
			After:       req,
		}); err != nil {
			return err
		}
		return notify.ToUser(tx, req.CompanyID, req.EmployeeID, notify.KindRequestRejected,
			"Material request rejected", fmt.Sprintf("Your request for %s was rejected: %s", req.Name, reason))
	})
	if err != nil {
		return nil, err
	}
	metrics.RequestsReviewed.WithLabelValues("rejected").Inc()
	return req, nil
}
