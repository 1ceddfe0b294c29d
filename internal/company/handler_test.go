package company

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"interiors-erp/internal/auth"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"
	"interiors-erp/internal/testhelpers"

	"github.com/gofiber/fiber/v2"
)

func TestUpdateCompanyRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateCompanyRequest
		wantErr bool
	}{
		{"valid", UpdateCompanyRequest{Name: "Acme Interiors", GSTIN: "29ABCDE1234F1Z5"}, false},
		{"blank name", UpdateCompanyRequest{Name: ""}, true},
		{"long gstin", UpdateCompanyRequest{Name: "Acme", GSTIN: "29ABCDE1234F1Z5X"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompanyHandlers_StayInTenant(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	mine := testhelpers.CreateTestCompany(t, db, "Acme Interiors")
	other := testhelpers.CreateTestCompany(t, db, "Other Co")
	admin := testhelpers.CreateTestUser(t, db, mine.ID, "admin@acme.test", models.RoleAdmin)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(log, false)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxCredentialKey, auth.Credential(auth.UserCredential{
			UserID: admin.ID, Role: models.RoleAdmin, CompanyID: mine.ID,
		}))
		return c.Next()
	})
	app.Get("/company", GetCompanyHandler(db))
	app.Put("/company", UpdateCompanyHandler(db))

	req := httptest.NewRequest("PUT", "/company", strings.NewReader(`{"name":"Acme Studio","address":"MG Road"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("PUT /company: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/company", nil))
	if err != nil {
		t.Fatalf("GET /company: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Data models.Company `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != mine.ID || body.Data.Name != "Acme Studio" || body.Data.Address != "MG Road" {
		t.Errorf("company = %+v", body.Data)
	}

	var untouched models.Company
	db.First(&untouched, other.ID)
	if untouched.Name != "Other Co" {
		t.Errorf("other company renamed to %q", untouched.Name)
	}
}
