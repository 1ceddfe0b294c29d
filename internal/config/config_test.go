package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.UsageWarningRatio != 0.1 {
		t.Errorf("UsageWarningRatio = %v, want 0.1", cfg.UsageWarningRatio)
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("SUPERADMIN_EMAIL", "  Root@Example.com ")
	t.Setenv("SUPERADMIN_SESSION_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if !cfg.IsProduction() {
		t.Error("expected production env")
	}
	if cfg.SuperAdminEmail != "root@example.com" {
		t.Errorf("SuperAdminEmail = %q", cfg.SuperAdminEmail)
	}
	if cfg.SuperAdminSessionTTL != 30*time.Minute {
		t.Errorf("SuperAdminSessionTTL = %v", cfg.SuperAdminSessionTTL)
	}
}

func TestLoad_RejectsWeakSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"missing", "", "not set"},
		{"short", "too-short", "at least 32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_RejectsBadWarningRatio(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("USAGE_WARNING_RATIO", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for ratio above 1")
	}
}
