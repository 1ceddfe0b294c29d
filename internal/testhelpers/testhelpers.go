// Package testhelpers provides a migrated Postgres database and seed records
// for database-backed tests.
package testhelpers

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"interiors-erp/internal/database"
	"interiors-erp/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens the database named by TEST_DATABASE_DSN, migrates it and
// truncates every table. The test is skipped when the variable is unset.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	if err := database.Migrate(db, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	tables := []string{
		"audit_logs", "notifications", "bill_items", "bills", "labour_payments", "labours",
		"material_requests", "usage_logs", "project_materials", "materials", "contracts",
		"project_documents", "project_engineers", "projects", "engineers", "clients",
		"super_admin_sessions", "users", "companies",
	}
	if err := db.Exec("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("failed to truncate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateTestCompany(t *testing.T, db *gorm.DB, name string) models.Company {
	t.Helper()
	company := models.Company{Name: name}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}
	return company
}

func CreateTestUser(t *testing.T, db *gorm.DB, companyID uint, email string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		CompanyID:    companyID,
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func CreateTestProject(t *testing.T, db *gorm.DB, companyID uint, name string) models.Project {
	t.Helper()
	project := models.Project{CompanyID: companyID, Name: name, Status: models.ProjectInProgress}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

func CreateTestMaterial(t *testing.T, db *gorm.DB, companyID uint, code, name, unit string) models.Material {
	t.Helper()
	material := models.Material{CompanyID: companyID, MaterialCode: code, Name: name, Unit: unit, DefaultRate: 100}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("failed to create test material: %v", err)
	}
	return material
}

// AllocateTestMaterial creates a ProjectMaterial row with the given quantities.
func AllocateTestMaterial(t *testing.T, db *gorm.DB, projectID, materialID uint, assigned, used float64) models.ProjectMaterial {
	t.Helper()
	pm := models.ProjectMaterial{ProjectID: projectID, MaterialID: materialID, Assigned: assigned, Used: used}
	if err := db.Create(&pm).Error; err != nil {
		t.Fatalf("failed to allocate test material: %v", err)
	}
	return pm
}
