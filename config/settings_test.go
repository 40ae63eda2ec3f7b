package config

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadSettingsDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_MODE", "STORE_BASE_URL", "SCAN_COOLDOWN_MS", "TIMEZONE", "RATE_LIMIT_ENABLED"} {
		t.Setenv(key, "")
	}
	s := LoadSettings()
	if s.Port != "8080" || s.StoreMode != StoreModeRest {
		t.Fatalf("unexpected defaults port=%q mode=%q", s.Port, s.StoreMode)
	}
	if s.ScanCooldown != 2*time.Second || s.Timezone != "Asia/Kolkata" {
		t.Fatalf("unexpected cooldown %s / timezone %s", s.ScanCooldown, s.Timezone)
	}
	if s.RateLimitEnabled {
		t.Fatalf("rate limiting should be off by default")
	}
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("STORE_MODE", "SQL")
	t.Setenv("STORE_BASE_URL", "http://store.local:5000/")
	t.Setenv("SCAN_COOLDOWN_MS", "500")
	t.Setenv("STORE_TIMEOUT_SECONDS", "not-a-number")
	s := LoadSettings()
	if s.StoreMode != StoreModeSql {
		t.Fatalf("expected sql mode, got %q", s.StoreMode)
	}
	if s.StoreURL != "http://store.local:5000" {
		t.Fatalf("trailing slash not trimmed: %q", s.StoreURL)
	}
	if s.ScanCooldown != 500*time.Millisecond || s.StoreTimeout != 10*time.Second {
		t.Fatalf("unexpected durations %s / %s", s.ScanCooldown, s.StoreTimeout)
	}

	t.Setenv("STORE_MODE", "graphql")
	if LoadSettings().StoreMode != StoreModeRest {
		t.Fatalf("unknown store mode should fall back to rest")
	}
}

func TestDatabaseDSN(t *testing.T) {
	s := &Settings{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "oil_ledger"}
	if dsn := DatabaseDSN(s); !strings.HasPrefix(dsn, "u:p@tcp(db:3306)/oil_ledger?") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	s.DBHost = "/cloudsql/project:region:instance"
	if dsn := DatabaseDSN(s); !strings.Contains(dsn, "@unix(/cloudsql/project:region:instance)/") {
		t.Fatalf("unexpected socket dsn %q", dsn)
	}
}

func TestSetLogLevel(t *testing.T) {
	defer GetLogger().SetLevel(logrus.InfoLevel)
	SetLogLevel("debug")
	if GetLogger().GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level")
	}
	SetLogLevel("chatty")
	if GetLogger().GetLevel() != logrus.DebugLevel {
		t.Fatalf("unknown level should keep the current one")
	}
}
