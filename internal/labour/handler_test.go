package labour

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
	"gorm.io/gorm"
)

func newApp(db *gorm.DB, cred auth.UserCredential) *fiber.App {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(log, false)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxCredentialKey, auth.Credential(cred))
		return c.Next()
	})
	app.Get("/labours", ListLaboursHandler(db))
	app.Post("/labours", CreateLabourHandler(db))
	app.Post("/labours/:id/payments", CreatePaymentHandler(db))
	app.Get("/labours/:id/payments", ListPaymentsHandler(db))
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

func TestLabourPayments(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	company := testhelpers.CreateTestCompany(t, db, "Acme Interiors")
	admin := testhelpers.CreateTestUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	project := testhelpers.CreateTestProject(t, db, company.ID, "Villa")
	app := newApp(db, auth.UserCredential{UserID: admin.ID, Role: models.RoleAdmin, CompanyID: company.ID})

	status, body := call(t, app, "POST", "/labours",
		`{"projectId":`+httpx.UintString(project.ID)+`,"name":"Ravi","skill":"carpenter","dailyWage":900}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create labour status = %d, body %v", status, body)
	}
	labourID := uint(body["data"].(map[string]any)["id"].(float64))
	base := "/labours/" + httpx.UintString(labourID) + "/payments"

	for _, amount := range []string{"1500", "2500.5"} {
		if status, body := call(t, app, "POST", base, `{"amount":`+amount+`,"mode":"upi","date":"2026-03-01"}`); status != fiber.StatusCreated {
			t.Fatalf("create payment status = %d, body %v", status, body)
		}
	}

	if status, _ := call(t, app, "POST", base, `{"amount":0}`); status != fiber.StatusBadRequest {
		t.Errorf("zero payment status = %d, want 400", status)
	}
	if status, _ := call(t, app, "POST", base, `{"amount":10,"mode":"barter"}`); status != fiber.StatusBadRequest {
		t.Errorf("unknown mode status = %d, want 400", status)
	}

	_, body = call(t, app, "GET", "/labours?projectId="+httpx.UintString(project.ID), "")
	list := body["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("labours = %d, want 1", len(list))
	}
	if got := list[0].(map[string]any)["totalPaid"]; got != 4000.5 {
		t.Errorf("totalPaid = %v, want 4000.5", got)
	}

	_, body = call(t, app, "GET", base, "")
	if got := body["totalPaid"]; got != 4000.5 {
		t.Errorf("payments totalPaid = %v, want 4000.5", got)
	}
}
