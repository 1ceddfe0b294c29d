package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultDSN        = "host=localhost user=postgres password=postgres dbname=interiors_erp port=5432 sslmode=disable"
	defaultCORSOrigin = "http://localhost:5173"
)

type Config struct {
	Env         string
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins string

	UploadDir      string // engineer photos, company logos, project documents
	MaxUploadMB    int
	MetricsEnabled bool

	SuperAdminEmail        string
	SuperAdminPasswordHash string
	SuperAdminSessionTTL   time.Duration

	// Remaining/assigned ratio at or below which a usage log response carries a warning.
	UsageWarningRatio float64
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (if present), the optional CONFIG_FILE and the process
// environment, in increasing priority.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigin)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SUPERADMIN_SESSION_TTL", "12h")
	v.SetDefault("USAGE_WARNING_RATIO", 0.1)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Env:                    strings.ToLower(v.GetString("APP_ENV")),
		HTTPPort:               v.GetString("HTTP_PORT"),
		DatabaseDSN:            v.GetString("DATABASE_DSN"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		JWTTTL:                 v.GetDuration("JWT_TTL"),
		CORSOrigins:            v.GetString("CORS_ALLOWED_ORIGINS"),
		UploadDir:              v.GetString("UPLOAD_DIR"),
		MaxUploadMB:            v.GetInt("MAX_UPLOAD_MB"),
		MetricsEnabled:         v.GetBool("METRICS_ENABLED"),
		SuperAdminEmail:        strings.ToLower(strings.TrimSpace(v.GetString("SUPERADMIN_EMAIL"))),
		SuperAdminPasswordHash: v.GetString("SUPERADMIN_PASSWORD_HASH"),
		SuperAdminSessionTTL:   v.GetDuration("SUPERADMIN_SESSION_TTL"),
		UsageWarningRatio:      v.GetFloat64("USAGE_WARNING_RATIO"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.UsageWarningRatio < 0 || c.UsageWarningRatio > 1 {
		return errors.New("USAGE_WARNING_RATIO must be between 0 and 1")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Warn logs the settings that are fine for local development but not for a deployment.
func (c *Config) Warn(log *slog.Logger) {
	if c.DatabaseDSN == defaultDSN {
		log.Warn("DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == defaultCORSOrigin {
		log.Warn("CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if c.SuperAdminEmail == "" || c.SuperAdminPasswordHash == "" {
		log.Warn("super admin credentials are not configured, the console login is disabled")
	}
}
