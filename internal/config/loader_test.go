package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STAFFSCHED_CONFIG",
		"STAFFSCHED_HTTP_PORT",
		"STAFFSCHED_SQLITE_DSN",
		"STAFFSCHED_TIMEZONE",
		"STAFFSCHED_SMTP_HOST",
		"STAFFSCHED_SMTP_PORT",
		"STAFFSCHED_SMTP_FROM",
		"STAFFSCHED_NOTIFY_RATE",
		"STAFFSCHED_STRICT_AVAILABILITY",
	} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnvironment(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:staffscheduler.db?_pragma=foreign_keys(1)" {
		t.Errorf("unexpected default DSN: %q", cfg.SQLiteDSN)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("expected default timezone UTC, got %q", cfg.Timezone)
	}
	if cfg.NotificationsEnabled() {
		t.Error("notifications must be disabled without SMTP settings")
	}
	if !cfg.StrictAvailability {
		t.Error("strict availability must be on by default")
	}
}

func TestLoad_YAMLFileThenEnvOverride(t *testing.T) {
	clearEnvironment(t)

	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	content := []byte(`
http_port: 9090
timezone: Asia/Tokyo
smtp:
  host: mail.internal
  port: 587
  from: scheduler@example.com
notify_rate_per_second: 2.5
strict_availability: false
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("STAFFSCHED_CONFIG", path)
	t.Setenv("STAFFSCHED_HTTP_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 7070 {
		t.Errorf("environment must win over file, got port %d", cfg.HTTPPort)
	}
	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("expected timezone from file, got %q", cfg.Timezone)
	}
	if cfg.SMTPHost != "mail.internal" || cfg.SMTPPort != 587 {
		t.Errorf("unexpected SMTP settings: %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.NotifyRatePerSecond != 2.5 {
		t.Errorf("expected notify rate 2.5, got %v", cfg.NotifyRatePerSecond)
	}
	if cfg.StrictAvailability {
		t.Error("file must be able to relax strict availability")
	}
	if !cfg.NotificationsEnabled() {
		t.Error("notifications should be enabled")
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	clearEnvironment(t)

	t.Setenv("STAFFSCHED_HTTP_PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnvironment(t)

	t.Setenv("STAFFSCHED_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
