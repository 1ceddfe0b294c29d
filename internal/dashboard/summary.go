package dashboard

import (
	"interiors-erp/internal/auth"
	"interiors-erp/internal/billing"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LowStockItem struct {
	ProjectID    uint    `json:"projectId"`
	ProjectName  string  `json:"projectName"`
	MaterialID   uint    `json:"materialId"`
	MaterialCode string  `json:"materialCode"`
	MaterialName string  `json:"materialName"`
	Unit         string  `json:"unit"`
	Assigned     float64 `json:"assigned"`
	Used         float64 `json:"used"`
	Remaining    float64 `json:"remaining"`
}

type Summary struct {
	ProjectsByStatus map[models.ProjectStatus]int64 `json:"projectsByStatus"`
	TotalProjects    int64                          `json:"totalProjects"`
	PendingRequests  int64                          `json:"pendingRequests"`
	InvoiceCount     int64                          `json:"invoiceCount"`
	InvoicedTotal    float64                        `json:"invoicedTotal"`
	QuotationCount   int64                          `json:"quotationCount"`
	LabourPaidTotal  float64                        `json:"labourPaidTotal"`
	LowStock         []LowStockItem                 `json:"lowStock"`
}

// GET /api/dashboard/summary
func SummaryHandler(db *gorm.DB, warningRatio float64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}
		companyID := user.CompanyID

		s := Summary{
			ProjectsByStatus: map[models.ProjectStatus]int64{
				models.ProjectPlanning:   0,
				models.ProjectInProgress: 0,
				models.ProjectOnHold:     0,
				models.ProjectCompleted:  0,
			},
			LowStock: []LowStockItem{},
		}

		var statusRows []struct {
			Status models.ProjectStatus
			Count  int64
		}
		if err := db.Model(&models.Project{}).
			Select("status, COUNT(*) AS count").
			Where("company_id = ?", companyID).
			Group("status").
			Scan(&statusRows).Error; err != nil {
			return err
		}
		for _, r := range statusRows {
			s.ProjectsByStatus[r.Status] = r.Count
			s.TotalProjects += r.Count
		}

		if err := db.Model(&models.MaterialRequest{}).
			Where("company_id = ? AND status = ?", companyID, models.RequestPending).
			Count(&s.PendingRequests).Error; err != nil {
			return err
		}

		var bills []models.Bill
		if err := db.Preload("Items").
			Where("company_id = ? AND status <> ?", companyID, models.BillCancelled).
			Find(&bills).Error; err != nil {
			return err
		}
		for i := range bills {
			switch bills[i].BillType {
			case models.BillInvoice:
				s.InvoiceCount++
				s.InvoicedTotal += billing.Calculate(billing.InputFromBill(&bills[i])).NetPayable
			case models.BillQuotation:
				s.QuotationCount++
			}
		}
		s.InvoicedTotal = billing.Totals{NetPayable: s.InvoicedTotal}.Rounded().NetPayable

		if err := db.Table("labour_payments").
			Joins("JOIN labours ON labours.id = labour_payments.labour_id").
			Where("labours.company_id = ?", companyID).
			Select("COALESCE(SUM(labour_payments.amount), 0)").
			Scan(&s.LabourPaidTotal).Error; err != nil {
			return err
		}

		if err := db.Table("project_materials pm").
			Select(`pm.project_id, p.name AS project_name, pm.material_id,
				m.material_code, m.name AS material_name, m.unit,
				pm.assigned, pm.used, pm.assigned - pm.used AS remaining`).
			Joins("JOIN projects p ON p.id = pm.project_id").
			Joins("JOIN materials m ON m.id = pm.material_id").
			Where("p.company_id = ? AND pm.assigned > 0 AND pm.assigned - pm.used <= ? * pm.assigned", companyID, warningRatio).
			Order("remaining ASC").
			Scan(&s.LowStock).Error; err != nil {
			return err
		}

		return httpx.OK(c, s)
	}
}
