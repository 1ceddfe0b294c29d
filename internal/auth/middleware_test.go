package auth

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"interiors-erp/internal/config"
	"interiors-erp/internal/models"

	"github.com/gofiber/fiber/v2"
)

type fakeSessions struct {
	tokens map[string]models.SuperAdminSession
}

func (f *fakeSessions) Create(_ context.Context, email string, _ time.Duration) (string, error) {
	token := newOpaqueToken()
	f.tokens[token] = models.SuperAdminSession{ID: uint(len(f.tokens) + 1), Email: email}
	return token, nil
}

func (f *fakeSessions) Lookup(_ context.Context, token string) (*models.SuperAdminSession, error) {
	s, ok := f.tokens[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeSessions) PurgeExpired(context.Context) (int64, error) { return 0, nil }

// fakeUsers treats every user as active unless listed.
type fakeUsers struct {
	inactive map[uint]bool
}

func (f *fakeUsers) IsActive(_ context.Context, userID uint) (bool, error) {
	return !f.inactive[userID], nil
}

func newAuthApp(t *testing.T) (*fiber.App, *fakeSessions) {
	t.Helper()
	return newAuthAppWithUsers(t, &fakeUsers{})
}

func newAuthAppWithUsers(t *testing.T, users UserStatus) (*fiber.App, *fakeSessions) {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, JWTTTL: time.Hour}
	sessions := &fakeSessions{tokens: map[string]models.SuperAdminSession{}}

	app := fiber.New()
	api := app.Group("", Middleware(cfg, sessions, users))
	api.Get("/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		u, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.SendString(u.Email)
	})
	api.Get("/any-user", RequireRole(models.RoleAdmin, models.RoleSiteEngineer), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	api.Get("/console", RequireSuperAdmin(), func(c *fiber.Ctx) error {
		cred, _ := CredentialFrom(c)
		return c.SendString(cred.(SuperAdminCredential).Email)
	})
	return app, sessions
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestMiddleware_DispatchesOnCredentialType(t *testing.T) {
	app, sessions := newAuthApp(t)

	adminToken, _ := GenerateToken(testSecret, time.Hour, &models.User{ID: 1, Email: "admin@co.in", Role: models.RoleAdmin, CompanyID: 1})
	engToken, _ := GenerateToken(testSecret, time.Hour, &models.User{ID: 2, Email: "eng@co.in", Role: models.RoleSiteEngineer, CompanyID: 1})
	consoleToken, _ := sessions.Create(context.Background(), "root@erp.in", time.Hour)

	if !strings.HasPrefix(consoleToken, SuperAdminTokenPrefix) {
		t.Fatalf("console token %q lacks prefix", consoleToken)
	}

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no header", "/admin-only", "", 401},
		{"bad jwt", "/admin-only", "abc.def.ghi", 401},
		{"unknown console token", "/console", SuperAdminTokenPrefix + "nope", 401},
		{"admin on admin route", "/admin-only", adminToken, 200},
		{"engineer on admin route", "/admin-only", engToken, 403},
		{"engineer on shared route", "/any-user", engToken, 200},
		{"console token on company route", "/any-user", consoleToken, 403},
		{"admin on console route", "/console", adminToken, 403},
		{"console token on console route", "/console", consoleToken, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(t, app, tt.path, tt.token); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestMiddleware_RejectsMalformedHeader(t *testing.T) {
	app, _ := newAuthApp(t)
	req := httptest.NewRequest("GET", "/any-user", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestMiddleware_DeletedSessionIsRejected(t *testing.T) {
	app, sessions := newAuthApp(t)
	token, _ := sessions.Create(context.Background(), "root@erp.in", time.Hour)
	_ = sessions.Delete(context.Background(), token)

	if got := call(t, app, "/console", token); got != 401 {
		t.Errorf("status = %d, want 401", got)
	}
}

func TestMiddleware_DeactivatedUserIsRejected(t *testing.T) {
	users := &fakeUsers{inactive: map[uint]bool{}}
	app, _ := newAuthAppWithUsers(t, users)
	token, _ := GenerateToken(testSecret, time.Hour, &models.User{ID: 7, Email: "eng@co.in", Role: models.RoleSiteEngineer, CompanyID: 1})

	if got := call(t, app, "/any-user", token); got != 200 {
		t.Fatalf("active user status = %d, want 200", got)
	}

	users.inactive[7] = true
	if got := call(t, app, "/any-user", token); got != 401 {
		t.Errorf("deactivated user status = %d, want 401", got)
	}
}
