package billing

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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

var (
	billTypes    = []any{models.BillInvoice, models.BillQuotation}
	billStatuses = []any{models.BillDraft, models.BillSent, models.BillPaid, models.BillCancelled}
)

type ItemInput struct {
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	// Amount is accepted for compatibility and ignored; it is always
	// recomputed as quantity * rate.
	Amount float64 `json:"amount"`
}

func (i ItemInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Description, validation.Required, validation.Length(1, 255)),
		validation.Field(&i.Quantity, validation.Min(0.0)),
		validation.Field(&i.Rate, validation.Min(0.0)),
	)
}

type BillInput struct {
	BillNumber       string            `json:"billNumber"`
	BillType         models.BillType   `json:"billType"`
	BillDate         string            `json:"billDate"`
	DueDate          string            `json:"dueDate"`
	ProjectID        *uint             `json:"projectId"`
	ClientName       string            `json:"clientName"`
	ClientAddress    string            `json:"clientAddress"`
	ClientGSTIN      string            `json:"clientGstin"`
	ProjectName      string            `json:"projectName"`
	LabourCharges    float64           `json:"labourCharges"`
	TransportCharges float64           `json:"transportCharges"`
	OtherCharges     float64           `json:"otherCharges"`
	CGST             float64           `json:"cgst"`
	SGST             float64           `json:"sgst"`
	IGST             float64           `json:"igst"`
	TDS              float64           `json:"tds"`
	Retention        float64           `json:"retention"`
	AdvancePaid      float64           `json:"advancePaid"`
	PreviousBills    float64           `json:"previousBills"`
	Status           models.BillStatus `json:"status"`
	Notes            string            `json:"notes"`
	Items            []ItemInput       `json:"items"`
}

func (in BillInput) Validate() error {
	pct := []validation.Rule{validation.Min(0.0), validation.Max(100.0)}
	return validation.ValidateStruct(&in,
		validation.Field(&in.BillType, validation.Required, validation.In(billTypes...)),
		validation.Field(&in.ClientName, validation.Required, validation.Length(1, 150)),
		validation.Field(&in.BillNumber, validation.Length(0, 30)),
		validation.Field(&in.LabourCharges, validation.Min(0.0)),
		validation.Field(&in.TransportCharges, validation.Min(0.0)),
		validation.Field(&in.OtherCharges, validation.Min(0.0)),
		validation.Field(&in.CGST, pct...),
		validation.Field(&in.SGST, pct...),
		validation.Field(&in.IGST, pct...),
		validation.Field(&in.TDS, pct...),
		validation.Field(&in.Retention, pct...),
		validation.Field(&in.AdvancePaid, validation.Min(0.0)),
		validation.Field(&in.PreviousBills, validation.Min(0.0)),
		validation.Field(&in.Status, validation.In(billStatuses...)),
		validation.Field(&in.Items, validation.Required),
	)
}

// BillView is a bill with its totals computed for display.
type BillView struct {
	models.Bill
	Totals Totals `json:"totals"`
}

func NewView(b models.Bill) BillView {
	return BillView{Bill: b, Totals: Calculate(InputFromBill(&b)).Rounded()}
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func numberPrefix(t models.BillType, date time.Time) string {
	p := "INV"
	if t == models.BillQuotation {
		p = "QUO"
	}
	return fmt.Sprintf("%s-%d-", p, date.Year())
}

// nextNumber returns the next free number in the INV-YYYY-NNNN or
// QUO-YYYY-NNNN series for the company. Manual numbers that share the prefix
// but have a non-numeric suffix do not take part in the sequence.
func nextNumber(tx *gorm.DB, companyID uint, t models.BillType, date time.Time) (string, error) {
	prefix := numberPrefix(t, date)
	pattern := "^" + prefix + "([0-9]{1,9})$"
	var last int
	err := tx.Model(&models.Bill{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(bill_number FROM ?) AS integer)), 0)", pattern).
		Where("company_id = ? AND bill_number ~ ?", companyID, pattern).
		Scan(&last).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, last+1), nil
}

func buildItems(in []ItemInput) ([]models.BillItem, error) {
	items := make([]models.BillItem, len(in))
	for i, it := range in {
		if err := it.Validate(); err != nil {
			return nil, validation.Errors{fmt.Sprintf("items[%d]", i): err}
		}
		items[i] = models.BillItem{
			Description: strings.TrimSpace(it.Description),
			Unit:        strings.TrimSpace(it.Unit),
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Quantity * it.Rate,
		}
	}
	return items, nil
}

// apply copies validated input onto b. Item amounts come from quantity and
// rate, never from the client.
func (s *Service) apply(tx *gorm.DB, companyID uint, in BillInput, b *models.Bill) error {
	if err := in.Validate(); err != nil {
		return err
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return err
	}

	date := time.Now()
	if strings.TrimSpace(in.BillDate) != "" {
		if date, err = time.Parse("2006-01-02", in.BillDate); err != nil {
			return apperr.Validation("billDate must be in YYYY-MM-DD format")
		}
	}
	var due *time.Time
	if strings.TrimSpace(in.DueDate) != "" {
		d, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return apperr.Validation("dueDate must be in YYYY-MM-DD format")
		}
		due = &d
	}

	projectName := strings.TrimSpace(in.ProjectName)
	if in.ProjectID != nil {
		var p models.Project
		if err := tx.Where("id = ? AND company_id = ?", *in.ProjectID, companyID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Project not found")
			}
			return err
		}
		if projectName == "" {
			projectName = p.Name
		}
	}

	b.CompanyID = companyID
	b.ProjectID = in.ProjectID
	b.BillType = in.BillType
	b.BillDate = date
	b.DueDate = due
	b.ClientName = strings.TrimSpace(in.ClientName)
	b.ClientAddress = strings.TrimSpace(in.ClientAddress)
	b.ClientGSTIN = strings.ToUpper(strings.TrimSpace(in.ClientGSTIN))
	b.ProjectName = projectName
	b.LabourCharges = in.LabourCharges
	b.TransportCharges = in.TransportCharges
	b.OtherCharges = in.OtherCharges
	b.CGSTPct = in.CGST
	b.SGSTPct = in.SGST
	b.IGSTPct = in.IGST
	b.TDSPct = in.TDS
	b.RetentionPct = in.Retention
	b.AdvancePaid = in.AdvancePaid
	b.PreviousBills = in.PreviousBills
	b.Notes = in.Notes
	if in.Status != "" {
		b.Status = in.Status
	}
	b.Items = items

	if n := strings.TrimSpace(in.BillNumber); n != "" {
		b.BillNumber = n
	} else if b.BillNumber == "" {
		if b.BillNumber, err = nextNumber(tx, companyID, b.BillType, date); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) writeAudit(tx *gorm.DB, user auth.UserCredential, action models.AuditAction, b *models.Bill, before any) error {
	desc := map[models.AuditAction]string{
		models.AuditActionCreate: "Created",
		models.AuditActionUpdate: "Updated",
		models.AuditActionDelete: "Deleted",
	}[action]
	var after any
	if action != models.AuditActionDelete {
		after = b
	}
	return audit.WriteLog(tx, audit.LogOptions{
		CompanyID:   user.CompanyID,
		UserID:      user.UserID,
		UserName:    audit.UserName(tx, user.UserID),
		EntityType:  "bill",
		EntityID:    b.ID,
		Action:      action,
		Description: fmt.Sprintf("%s %s %s for %s", desc, b.BillType, b.BillNumber, b.ClientName),
		Before:      before,
		After:       after,
	})
}

func (s *Service) Create(ctx context.Context, user auth.UserCredential, in BillInput) (*BillView, error) {
	b := models.Bill{Status: models.BillDraft}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.apply(tx, user.CompanyID, in, &b); err != nil {
			return err
		}
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
		return s.writeAudit(tx, user, models.AuditActionCreate, &b, nil)
	})
	if err != nil {
		return nil, err
	}
	metrics.BillsSaved.WithLabelValues(string(b.BillType)).Inc()
	v := NewView(b)
	return &v, nil
}

func (s *Service) find(tx *gorm.DB, companyID, id uint) (*models.Bill, error) {
	var b models.Bill
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Bill not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) Get(ctx context.Context, companyID, id uint) (*BillView, error) {
	b, err := s.find(s.db.WithContext(ctx), companyID, id)
	if err != nil {
		return nil, err
	}
	v := NewView(*b)
	return &v, nil
}

// Update replaces every field and the full item list.
func (s *Service) Update(ctx context.Context, user auth.UserCredential, id uint, in BillInput) (*BillView, error) {
	var b *models.Bill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.find(tx, user.CompanyID, id); err != nil {
			return err
		}
		before := *b
		if err := s.apply(tx, user.CompanyID, in, b); err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", b.ID).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		for i := range b.Items {
			b.Items[i].BillID = b.ID
		}
		if err := tx.Omit("Items").Save(b).Error; err != nil {
			return err
		}
		if len(b.Items) > 0 {
			if err := tx.Create(&b.Items).Error; err != nil {
				return err
			}
		}
		return s.writeAudit(tx, user, models.AuditActionUpdate, b, before)
	})
	if err != nil {
		return nil, err
	}
	metrics.BillsSaved.WithLabelValues(string(b.BillType)).Inc()
	v := NewView(*b)
	return &v, nil
}

func (s *Service) SetStatus(ctx context.Context, user auth.UserCredential, id uint, status models.BillStatus) (*BillView, error) {
	if err := validation.Validate(status, validation.Required, validation.In(billStatuses...)); err != nil {
		return nil, validation.Errors{"status": err}
	}
	var b *models.Bill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.find(tx, user.CompanyID, id); err != nil {
			return err
		}
		before := *b
		if err := tx.Model(b).Update("status", status).Error; err != nil {
			return err
		}
		b.Status = status
		return s.writeAudit(tx, user, models.AuditActionUpdate, b, before)
	})
	if err != nil {
		return nil, err
	}
	v := NewView(*b)
	return &v, nil
}

func (s *Service) Delete(ctx context.Context, user auth.UserCredential, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.find(tx, user.CompanyID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", b.ID).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(b).Error; err != nil {
			return err
		}
		return s.writeAudit(tx, user, models.AuditActionDelete, b, b)
	})
}

type ListFilter struct {
	Type      models.BillType
	Status    models.BillStatus
	ProjectID uint
}

func (s *Service) List(ctx context.Context, companyID uint, f ListFilter) ([]BillView, error) {
	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("company_id = ?", companyID)
	if f.Type != "" {
		q = q.Where("bill_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}

	var bills []models.Bill
	if err := q.Order("bill_date DESC, id DESC").Find(&bills).Error; err != nil {
		return nil, err
	}
	views := make([]BillView, len(bills))
	for i, b := range bills {
		views[i] = NewView(b)
	}
	return views, nil
}
