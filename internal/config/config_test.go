package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GATEHOUSE_SECRET_KEY", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.AccessTTL != 30*time.Minute {
		t.Fatalf("unexpected access ttl: %v", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected refresh ttl: %v", cfg.RefreshTTL)
	}
	if cfg.TenancyStrategy != TenancyRow {
		t.Fatalf("unexpected tenancy strategy: %s", cfg.TenancyStrategy)
	}
	if cfg.RevocationBackend != RevocationPostgres {
		t.Fatalf("unexpected revocation backend: %s", cfg.RevocationBackend)
	}
	if cfg.SweepInterval != 0 {
		t.Fatalf("expected sweep disabled by default, got %v", cfg.SweepInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GATEHOUSE_SECRET_KEY", "test-secret")
	t.Setenv("GATEHOUSE_ACCESS_TTL", "15m")
	t.Setenv("GATEHOUSE_REFRESH_TTL", "48h")
	t.Setenv("GATEHOUSE_SWEEP_INTERVAL", "1h")
	t.Setenv("GATEHOUSE_REVOCATION_BACKEND", "redis")
	t.Setenv("GATEHOUSE_CORS_ORIGINS", "http://localhost:3000, http://localhost:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl: %v", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 48*time.Hour {
		t.Fatalf("unexpected refresh ttl: %v", cfg.RefreshTTL)
	}
	if cfg.SweepInterval != time.Hour {
		t.Fatalf("unexpected sweep interval: %v", cfg.SweepInterval)
	}
	if cfg.RevocationBackend != RevocationRedis {
		t.Fatalf("unexpected revocation backend: %s", cfg.RevocationBackend)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("GATEHOUSE_SECRET_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("GATEHOUSE_SECRET_KEY", "test-secret")
	t.Setenv("GATEHOUSE_TENANCY_STRATEGY", "per-cluster")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown tenancy strategy")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("GATEHOUSE_SECRET_KEY", "test-secret")
	t.Setenv("GATEHOUSE_ACCESS_TTL", "thirty minutes")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
