package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "LOCAL_STORE_SEED", "BCRYPT_COST", "PUBLIC_BASE_URL", "JWT_ACCESS_EXPIRY", "SUPER_ADMIN_EMERGENCY_FALLBACK"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.StoreBackend != "local" || !cfg.LocalStoreSeed {
		t.Errorf("store defaults: %q seed=%v", cfg.StoreBackend, cfg.LocalStoreSeed)
	}
	if cfg.BcryptCost != 10 || cfg.JWTAccessExpiry != 15*time.Minute {
		t.Errorf("auth defaults: cost=%d expiry=%v", cfg.BcryptCost, cfg.JWTAccessExpiry)
	}
	if !cfg.SuperAdminEmergencyFallback {
		t.Error("emergency fallback should default to enabled")
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Errorf("base url %q", cfg.PublicBaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("LOCAL_STORE_SEED", "false")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("JWT_REFRESH_EXPIRY", "2h")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.com/")
	t.Setenv("SUPER_ADMIN_EMERGENCY_FALLBACK", "0")
	cfg := Load()

	if cfg.StoreBackend != "postgres" {
		t.Errorf("backend %q", cfg.StoreBackend)
	}
	if cfg.LocalStoreSeed || cfg.SuperAdminEmergencyFallback {
		t.Error("boolean overrides ignored")
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("invalid cost should fall back, got %d", cfg.BcryptCost)
	}
	if cfg.JWTRefreshExpiry != 2*time.Hour {
		t.Errorf("refresh expiry %v", cfg.JWTRefreshExpiry)
	}
	if cfg.PublicBaseURL != "https://api.example.com" {
		t.Errorf("base url %q", cfg.PublicBaseURL)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "bf", DBPassword: "pw", DBName: "buildforge", DBPort: "5432", DBSSLMode: "disable"}
	want := "host=db user=bf password=pw dbname=buildforge port=5432 sslmode=disable TimeZone=UTC"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q", got)
	}
}
