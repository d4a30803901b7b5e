// Package config resolves the booking daemon configuration. Values come
// from an optional YAML file pointed at by BOOKING_CONFIG, with environment
// variables taking precedence over the file and defaults filling the rest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backend selectors accepted in BOOKING_STORE.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config captures the runtime configuration of the booking daemon.
type Config struct {
	HTTPPort          int      `yaml:"http_port"`
	Store             string   `yaml:"store"`
	SQLiteDSN         string   `yaml:"sqlite_dsn"`
	RetentionDays     int      `yaml:"retention_days"`
	RetentionSchedule string   `yaml:"retention_schedule"`
	LogFormat         string   `yaml:"log_format"`
	LogLevel          string   `yaml:"log_level"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
}

func defaults() Config {
	return Config{
		HTTPPort:          8080,
		Store:             StoreSQLite,
		SQLiteDSN:         "file:booking.db?_pragma=foreign_keys(1)",
		RetentionDays:     30,
		RetentionSchedule: "0 3 * * *",
		LogFormat:         "text",
		LogLevel:          "info",
	}
}

// Load resolves configuration from the YAML file named by BOOKING_CONFIG
// (when set) and the process environment.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("BOOKING_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if store := strings.TrimSpace(os.Getenv("BOOKING_STORE")); store != "" {
		cfg.Store = store
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if daysValue := strings.TrimSpace(os.Getenv("BOOKING_RETENTION_DAYS")); daysValue != "" {
		days, err := strconv.Atoi(daysValue)
		if err != nil {
			invalid = append(invalid, "BOOKING_RETENTION_DAYS")
		} else {
			cfg.RetentionDays = days
		}
	}

	if schedule := strings.TrimSpace(os.Getenv("BOOKING_RETENTION_SCHEDULE")); schedule != "" {
		cfg.RetentionSchedule = schedule
	}

	if format := strings.TrimSpace(os.Getenv("BOOKING_LOG_FORMAT")); format != "" {
		cfg.LogFormat = format
	}
	if level := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if origins := strings.TrimSpace(os.Getenv("BOOKING_ALLOWED_ORIGINS")); origins != "" {
		cfg.AllowedOrigins = splitOrigins(origins)
	}

	switch cfg.Store {
	case StoreSQLite, StoreMemory:
	default:
		invalid = append(invalid, "BOOKING_STORE")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
