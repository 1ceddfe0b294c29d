package superadmin

import (
	"context"
	"fmt"

	"interiors-erp/internal/billing"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/sheet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func userTable(u *models.User) sheet.Table {
	company := ""
	if u.Company != nil {
		company = u.Company.Name
	}
	return sheet.Table{
		Name:    "User",
		Headers: []string{"Field", "Value"},
		Rows: [][]any{
			{"ID", u.ID},
			{"Name", u.Name},
			{"Email", u.Email},
			{"Phone", u.Phone},
			{"Role", string(u.Role)},
			{"Active", u.Active},
			{"Company", company},
			{"Created", u.CreatedAt.Format("2006-01-02 15:04")},
		},
		Widths: []float64{14, 40},
	}
}

func projectsTable(projects []models.Project) sheet.Table {
	rows := make([][]any, len(projects))
	for i, p := range projects {
		client := ""
		if p.Client != nil {
			client = p.Client.Name
		}
		rows[i] = []any{
			p.ID, p.Name, client, p.Location, string(p.Status),
			httpx.FormatDate(p.StartDate), httpx.FormatDate(p.EndDate), p.Budget,
		}
	}
	return sheet.Table{
		Name:    "Projects",
		Headers: []string{"ID", "Name", "Client", "Location", "Status", "Start", "End", "Budget"},
		Rows:    rows,
		Widths:  []float64{8, 30, 26, 30, 14, 12, 12, 14},
	}
}

func materialsTable(materials []models.Material) sheet.Table {
	rows := make([][]any, len(materials))
	for i, m := range materials {
		rows[i] = []any{m.MaterialCode, m.Name, m.Category, m.Unit, m.DefaultRate, m.Vendor}
	}
	return sheet.Table{
		Name:    "Materials",
		Headers: []string{"Code", "Name", "Category", "Unit", "Default rate", "Vendor"},
		Rows:    rows,
		Widths:  []float64{14, 30, 18, 10, 14, 26},
	}
}

// BuildUserExport writes the user's profile and their company's projects,
// catalog and bills into one workbook.
func BuildUserExport(ctx context.Context, db *gorm.DB, bills *billing.Service, userID uint) (*models.User, []byte, error) {
	db = db.WithContext(ctx)
	user, err := findUser(db, userID)
	if err != nil {
		return nil, nil, err
	}

	var projects []models.Project
	if err := db.Preload("Client").Where("company_id = ?", user.CompanyID).Order("id").Find(&projects).Error; err != nil {
		return nil, nil, err
	}
	var materials []models.Material
	if err := db.Where("company_id = ?", user.CompanyID).Order("material_code").Find(&materials).Error; err != nil {
		return nil, nil, err
	}
	views, err := bills.List(ctx, user.CompanyID, billing.ListFilter{})
	if err != nil {
		return nil, nil, err
	}

	data, err := sheet.Build(
		userTable(user),
		projectsTable(projects),
		materialsTable(materials),
		billing.BillsTable(views),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build export for user %d: %w", userID, err)
	}
	return user, data, nil
}

// GET /api/superadmin/users/:userId/export
func ExportUserHandler(db *gorm.DB, bills *billing.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := httpx.ParamID(c, "userId")
		if err != nil {
			return err
		}
		_, data, err := BuildUserExport(c.UserContext(), db, bills, userID)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, sheet.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="user-%d-export.xlsx"`, userID))
		return c.Send(data)
	}
}
