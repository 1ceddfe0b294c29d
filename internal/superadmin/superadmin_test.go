package superadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"interiors-erp/internal/billing"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/testhelpers"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func TestCreateUserRequest_Validate(t *testing.T) {
	valid := CreateUserRequest{
		Name:        "Asha",
		Email:       "asha@acme.test",
		Password:    "secret123",
		Role:        models.RoleAdmin,
		CompanyName: "Acme",
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateUserRequest)
		wantErr bool
	}{
		{"valid with company name", func(r *CreateUserRequest) {}, false},
		{"valid with company id", func(r *CreateUserRequest) { r.CompanyName = ""; r.CompanyID = 4 }, false},
		{"no company", func(r *CreateUserRequest) { r.CompanyName = "" }, true},
		{"super admin role", func(r *CreateUserRequest) { r.Role = models.RoleSuperAdmin }, true},
		{"bad email", func(r *CreateUserRequest) { r.Email = "asha" }, true},
		{"short password", func(r *CreateUserRequest) { r.Password = "abc" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	if err := (UpdateUserRequest{}).Validate(); err != nil {
		t.Errorf("empty update should be valid: %v", err)
	}
	if err := (UpdateUserRequest{Role: ptr(models.RoleSiteEngineer), Active: ptr(false)}).Validate(); err != nil {
		t.Errorf("role change should be valid: %v", err)
	}
	if err := (UpdateUserRequest{Name: ptr("")}).Validate(); err == nil {
		t.Error("blank name should be rejected")
	}
	if err := (UpdateUserRequest{Role: ptr(models.UserRole("Owner"))}).Validate(); err == nil {
		t.Error("unknown role should be rejected")
	}
}

func newApp(db *gorm.DB) *fiber.App {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(log, false)})
	app.Post("/create-user", CreateUserHandler(db))
	app.Put("/update-user/:id", UpdateUserHandler(db))
	app.Delete("/delete-user/:id", DeleteUserHandler(db))
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func TestUserLifecycle(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	app := newApp(db)

	status, body := call(t, app, "POST", "/create-user",
		`{"name":"Kiran","email":"Kiran@Acme.test","password":"secret123","role":"Site_Engineer","companyName":"Acme Interiors"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d, body %v", status, body)
	}

	var user models.User
	if err := db.Where("email = ?", "kiran@acme.test").First(&user).Error; err != nil {
		t.Fatalf("user not stored with normalized email: %v", err)
	}
	var companies int64
	db.Model(&models.Company{}).Where("name = ?", "Acme Interiors").Count(&companies)
	if companies != 1 {
		t.Errorf("companies named Acme Interiors = %d, want 1", companies)
	}
	var engineers int64
	db.Model(&models.Engineer{}).Where("user_id = ?", user.ID).Count(&engineers)
	if engineers != 1 {
		t.Fatalf("engineer profiles = %d, want 1", engineers)
	}

	status, _ = call(t, app, "POST", "/create-user",
		`{"name":"Other","email":"kiran@acme.test","password":"secret123","role":"Admin","companyId":`+httpx.UintString(user.CompanyID)+`}`)
	if status != fiber.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", status)
	}

	id := httpx.UintString(user.ID)
	status, body = call(t, app, "PUT", "/update-user/"+id, `{"role":"Admin","active":false}`)
	if status != fiber.StatusOK {
		t.Fatalf("update status = %d, body %v", status, body)
	}
	db.First(&user, user.ID)
	if user.Role != models.RoleAdmin || user.Active {
		t.Errorf("after update role=%s active=%v", user.Role, user.Active)
	}
	db.Model(&models.Engineer{}).Where("user_id = ?", user.ID).Count(&engineers)
	if engineers != 0 {
		t.Errorf("engineer profile kept after role change to Admin")
	}

	request := models.MaterialRequest{
		CompanyID:  user.CompanyID,
		Name:       "Plywood",
		Unit:       "sheet",
		Type:       models.RequestGlobal,
		Status:     models.RequestPending,
		EmployeeID: user.ID,
	}
	if err := db.Create(&request).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	if status, _ := call(t, app, "DELETE", "/delete-user/"+id, ""); status != fiber.StatusConflict {
		t.Errorf("delete with requests status = %d, want 409", status)
	}

	db.Delete(&request)
	if status, _ := call(t, app, "DELETE", "/delete-user/"+id, ""); status != fiber.StatusOK {
		t.Errorf("delete status = %d, want 200", status)
	}
	var left int64
	db.Model(&models.User{}).Where("id = ?", user.ID).Count(&left)
	if left != 0 {
		t.Errorf("user still present after delete")
	}
}

func TestBuildUserExport(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	company := testhelpers.CreateTestCompany(t, db, "Acme Interiors")
	admin := testhelpers.CreateTestUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	testhelpers.CreateTestProject(t, db, company.ID, "Villa")
	testhelpers.CreateTestMaterial(t, db, company.ID, "MAT-00000001", "=Cement", "bag")

	other := testhelpers.CreateTestCompany(t, db, "Other Co")
	testhelpers.CreateTestProject(t, db, other.ID, "Not mine")

	_, data, err := BuildUserExport(context.Background(), db, billing.NewService(db), admin.ID)
	if err != nil {
		t.Fatalf("BuildUserExport: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	want := []string{"User", "Projects", "Materials", "Bills"}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}

	if v, _ := f.GetCellValue("User", "B3"); v != "admin@acme.test" {
		t.Errorf("User!B3 = %q", v)
	}
	if v, _ := f.GetCellValue("Projects", "B2"); v != "Villa" {
		t.Errorf("Projects!B2 = %q", v)
	}
	if v, _ := f.GetCellValue("Projects", "B3"); v != "" {
		t.Errorf("export leaked another company's project %q", v)
	}
	if v, _ := f.GetCellValue("Materials", "B2"); v != "'=Cement" {
		t.Errorf("Materials!B2 = %q, want sanitized name", v)
	}
}

func TestBuildUserExport_UnknownUser(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	if _, _, err := BuildUserExport(context.Background(), db, billing.NewService(db), 999); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
