// Package config loads service configuration from an optional YAML file and
// the process environment. Environment variables always win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// Config captures the runtime configuration of the staff scheduler service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string
	Timezone  string

	SMTPHost string
	SMTPPort int
	SMTPFrom string
	// NotifyRatePerSecond caps outbound notification e-mails. Zero disables
	// pacing.
	NotifyRatePerSecond float64
	// StrictAvailability makes schedule creation reject on any conflict
	// unless the request overrides it. On by default; disabling it drops
	// conflicting assignees instead.
	StrictAvailability bool
}

type fileConfig struct {
	HTTPPort  *int    `yaml:"http_port"`
	SQLiteDSN *string `yaml:"sqlite_dsn"`
	Timezone  *string `yaml:"timezone"`

	SMTP struct {
		Host *string `yaml:"host"`
		Port *int    `yaml:"port"`
		From *string `yaml:"from"`
	} `yaml:"smtp"`

	NotifyRatePerSecond *float64 `yaml:"notify_rate_per_second"`
	StrictAvailability  *bool    `yaml:"strict_availability"`
}

// Load builds the configuration. Defaults are applied first, then the YAML
// file named by STAFFSCHED_CONFIG (if set), then individual STAFFSCHED_*
// environment variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:            8080,
		SQLiteDSN:           "file:staffscheduler.db?_pragma=foreign_keys(1)",
		Timezone:            "UTC",
		SMTPPort:            25,
		NotifyRatePerSecond: 5,
		StrictAvailability:  true,
	}

	if path := strings.TrimSpace(os.Getenv("STAFFSCHED_CONFIG")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnvironment(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if file.HTTPPort != nil {
		cfg.HTTPPort = *file.HTTPPort
	}
	if file.SQLiteDSN != nil {
		cfg.SQLiteDSN = *file.SQLiteDSN
	}
	if file.Timezone != nil {
		cfg.Timezone = *file.Timezone
	}
	if file.SMTP.Host != nil {
		cfg.SMTPHost = *file.SMTP.Host
	}
	if file.SMTP.Port != nil {
		cfg.SMTPPort = *file.SMTP.Port
	}
	if file.SMTP.From != nil {
		cfg.SMTPFrom = *file.SMTP.From
	}
	if file.NotifyRatePerSecond != nil {
		cfg.NotifyRatePerSecond = *file.NotifyRatePerSecond
	}
	if file.StrictAvailability != nil {
		cfg.StrictAvailability = *file.StrictAvailability
	}
	return nil
}

func applyEnvironment(cfg *Config) error {
	invalid := make([]string, 0, 2)

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_HTTP_PORT")); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 {
			invalid = append(invalid, "STAFFSCHED_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_SQLITE_DSN")); value != "" {
		cfg.SQLiteDSN = value
	}

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_TIMEZONE")); value != "" {
		cfg.Timezone = value
	}

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_SMTP_HOST")); value != "" {
		cfg.SMTPHost = value
	}

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_SMTP_PORT")); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 {
			invalid = append(invalid, "STAFFSCHED_SMTP_PORT")
		} else {
			cfg.SMTPPort = port
		}
	}

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_SMTP_FROM")); value != "" {
		cfg.SMTPFrom = value
	}

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_NOTIFY_RATE")); value != "" {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil || rate < 0 {
			invalid = append(invalid, "STAFFSCHED_NOTIFY_RATE")
		} else {
			cfg.NotifyRatePerSecond = rate
		}
	}

	if value := strings.TrimSpace(os.Getenv("STAFFSCHED_STRICT_AVAILABILITY")); value != "" {
		strict, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, "STAFFSCHED_STRICT_AVAILABILITY")
		} else {
			cfg.StrictAvailability = strict
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("config: invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// NotificationsEnabled reports whether an SMTP endpoint is configured.
func (c Config) NotificationsEnabled() bool {
	return strings.TrimSpace(c.SMTPHost) != "" && strings.TrimSpace(c.SMTPFrom) != ""
}
