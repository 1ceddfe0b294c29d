package database

import (
	"embed"
	"fmt"
	"log/slog"
	"time"

	"interiors-erp/internal/config"
	"interiors-erp/internal/models"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open connects to Postgres. The returned handle is shared by every request.
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// AllModels lists every table owned by the application, parents first.
func AllModels() []any {
	return []any{
		&models.Company{},
		&models.User{},
		&models.SuperAdminSession{},
		&models.Client{},
		&models.Engineer{},
		&models.Project{},
		&models.ProjectDocument{},
		&models.Contract{},
		&models.Material{},
		&models.ProjectMaterial{},
		&models.UsageLog{},
		&models.MaterialRequest{},
		&models.Labour{},
		&models.LabourPayment{},
		&models.Bill{},
		&models.BillItem{},
		&models.Notification{},
		&models.AuditLog{},
	}
}

// Migrate creates the tables with AutoMigrate and then applies the SQL
// migrations for constraints and indexes that struct tags cannot express.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	log.Info("database migrated")
	return nil
}
