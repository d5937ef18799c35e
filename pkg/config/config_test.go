package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WALLET_ENV", "GOOGLE_APPLICATION_CREDENTIALS", "WALLET_ISSUER_ID",
		"WALLET_CLASS_ID", "WALLET_USER_ID", "WALLET_OBJECT_TYPE",
		"WALLET_API_BASE", "WALLET_BATCH_URL", "WALLET_BATCH_COUNT",
		"WALLET_HTTP_TIMEOUT_SEC", "WALLET_SAVE_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("Env = %q", cfg.Env)
	}
	if cfg.IssuerID != "3388000000022141111" {
		t.Fatalf("IssuerID = %q", cfg.IssuerID)
	}
	if cfg.ClassID != "test-class-id" || cfg.UserID != "user@example.com" {
		t.Fatalf("ClassID=%q UserID=%q", cfg.ClassID, cfg.UserID)
	}
	if cfg.ObjectType != "generic" {
		t.Fatalf("ObjectType = %q", cfg.ObjectType)
	}
	if cfg.BatchCount != 3 {
		t.Fatalf("BatchCount = %d", cfg.BatchCount)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.SaveOrigins != nil {
		t.Fatalf("SaveOrigins = %v", cfg.SaveOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_ISSUER_ID", "42")
	t.Setenv("WALLET_OBJECT_TYPE", "loyalty")
	t.Setenv("WALLET_BATCH_COUNT", "7")
	t.Setenv("WALLET_HTTP_TIMEOUT_SEC", "5")
	t.Setenv("WALLET_SAVE_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()
	if cfg.IssuerID != "42" || cfg.ObjectType != "loyalty" {
		t.Fatalf("IssuerID=%q ObjectType=%q", cfg.IssuerID, cfg.ObjectType)
	}
	if cfg.BatchCount != 7 || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("BatchCount=%d HTTPTimeout=%v", cfg.BatchCount, cfg.HTTPTimeout)
	}
	if len(cfg.SaveOrigins) != 2 || cfg.SaveOrigins[1] != "https://b.example.com" {
		t.Fatalf("SaveOrigins = %v", cfg.SaveOrigins)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}

	bad := cfg
	bad.KeyFile = " "
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for blank key file path")
	}

	bad = cfg
	bad.IssuerID = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for empty issuer id")
	}

	bad = cfg
	bad.BatchCount = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for zero batch count")
	}
}
