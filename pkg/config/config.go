// pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env string

	// Service account key used both for the OAuth client and save-link signing.
	KeyFile string

	// Identifier inputs for the demo sequence.
	IssuerID string
	ClassID  string
	UserID   string

	// Wallet object variant (generic, giftcard, loyalty, offer, eventticket,
	// flight, transit).
	ObjectType string

	// Endpoints. Overridable so the whole sequence can run against a fake.
	APIBase  string
	BatchURL string

	// Optional payload template files; built-in demo payloads when empty.
	ClassTemplate  string
	ObjectTemplate string

	// Issuer creation and permissions inputs.
	IssuerName      string
	IssuerEmail     string
	PermissionEmail string
	PermissionRole  string

	// Allowed web origins embedded in the save-link claim set.
	SaveOrigins []string

	BatchCount  int
	HTTPTimeout time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:             env("WALLET_ENV", "dev"),
		KeyFile:         env("GOOGLE_APPLICATION_CREDENTIALS", "/path/to/key.json"),
		IssuerID:        env("WALLET_ISSUER_ID", "3388000000022141111"),
		ClassID:         env("WALLET_CLASS_ID", "test-class-id"),
		UserID:          env("WALLET_USER_ID", "user@example.com"),
		ObjectType:      env("WALLET_OBJECT_TYPE", "generic"),
		APIBase:         env("WALLET_API_BASE", "https://walletobjects.googleapis.com/walletobjects/v1"),
		BatchURL:        env("WALLET_BATCH_URL", "https://walletobjects.googleapis.com/batch"),
		ClassTemplate:   env("WALLET_CLASS_TEMPLATE", ""),
		ObjectTemplate:  env("WALLET_OBJECT_TEMPLATE", ""),
		IssuerName:      env("WALLET_ISSUER_NAME", "Example issuer"),
		IssuerEmail:     env("WALLET_ISSUER_EMAIL", "issuer@example.com"),
		PermissionEmail: env("WALLET_PERMISSION_EMAIL", "reader@example.com"),
		PermissionRole:  env("WALLET_PERMISSION_ROLE", "READER"),
		SaveOrigins:     envList("WALLET_SAVE_ORIGINS"),
		BatchCount:      envInt("WALLET_BATCH_COUNT", 3),
		HTTPTimeout:     envDur("WALLET_HTTP_TIMEOUT_SEC", 30) * time.Second,
	}
}

// Validate rejects configurations that would otherwise fail only after
// requests start going out.
func (c Config) Validate() error {
	if strings.TrimSpace(c.KeyFile) == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS is required")
	}
	if c.IssuerID == "" || c.ClassID == "" || c.UserID == "" {
		return fmt.Errorf("issuer, class and user ids must be non-empty")
	}
	if c.APIBase == "" || c.BatchURL == "" {
		return fmt.Errorf("API base and batch URLs must be non-empty")
	}
	if c.BatchCount <= 0 {
		return fmt.Errorf("WALLET_BATCH_COUNT must be positive, got %d", c.BatchCount)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("WALLET_HTTP_TIMEOUT_SEC must be positive")
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envDur(k string, def int) time.Duration {
	return time.Duration(envInt(k, def))
}

func envList(k string) []string {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
