package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"interiors-erp/internal/apperr"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func newTestApp(exposeInternal bool, err error) *fiber.App {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log, exposeInternal)})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func doRequest(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp.StatusCode, body
}

func TestErrorHandler_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"app validation", apperr.Validation("quantity exceeds remaining by %.2f", 5.0), 400, "quantity exceeds remaining by 5.00"},
		{"app not found", apperr.NotFound("project not found"), 404, "project not found"},
		{"app forbidden", apperr.Forbidden("no access"), 403, "no access"},
		{"app conflict wrapped", fmt.Errorf("save: %w", apperr.Conflict("duplicate")), 409, "duplicate"},
		{"fiber error", fiber.NewError(fiber.StatusUnauthorized, "missing token"), 401, "missing token"},
		{"gorm not found", gorm.ErrRecordNotFound, 404, "record not found"},
		{"unique violation", &pgconn.PgError{Code: "23505"}, 409, "a record with the same unique value already exists"},
		{"check violation", &pgconn.PgError{Code: "23514"}, 400, "the change violates a data constraint"},
		{"unknown", errors.New("connection reset"), 500, "unexpected server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, newTestApp(false, tt.err))
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			if body["error"] != tt.message {
				t.Errorf("error = %q, want %q", body["error"], tt.message)
			}
		})
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	verrs := validation.Errors{"email": errors.New("must be a valid email address")}
	status, body := doRequest(t, newTestApp(false, verrs))
	if status != 400 {
		t.Fatalf("status = %d, want 400", status)
	}
	details, ok := body["details"].(map[string]any)
	if !ok {
		t.Fatalf("details = %#v, want object", body["details"])
	}
	if details["email"] != "must be a valid email address" {
		t.Errorf("details.email = %v", details["email"])
	}
}

func TestErrorHandler_InternalDetailsOnlyOutsideProduction(t *testing.T) {
	err := errors.New("pq: relation missing")

	_, body := doRequest(t, newTestApp(true, err))
	if body["details"] != "pq: relation missing" {
		t.Errorf("development details = %v", body["details"])
	}

	_, body = doRequest(t, newTestApp(false, err))
	if _, ok := body["details"]; ok {
		t.Errorf("production response leaked details: %v", body["details"])
	}
}
