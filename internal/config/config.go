package config

import (
	"os"
	"strconv"
	"time"

	"gopivot/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Data      DataConfig
	Session   SessionConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings. An empty URL disables persistence.
type DatabaseConfig struct {
	URL   string
	Reset bool
}

// Enabled reports whether a database is configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port     string
	GinMode  string
	BasePath string
}

// DataConfig selects the pivot data source: a spreadsheet, a SQL query, or synthetic data
type DataConfig struct {
	File      string
	Sheet     string
	Query     string
	NotesFile string
	Rows      int
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	TTL            time.Duration
	SweepInterval  time.Duration
	StateRetention time.Duration
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:   getEnvOrDefault("DATABASE_URL", ""),
			Reset: getEnvBoolOrDefault("DB_RESET", false),
		},
		Server: ServerConfig{
			Port:     getEnvOrDefault("PORT", "8080"),
			GinMode:  getEnvOrDefault("GIN_MODE", "release"),
			BasePath: getEnvOrDefault("PIVOT_BASE_PATH", "/pivot"),
		},
		Data: DataConfig{
			File:      getEnvOrDefault("DATA_FILE", ""),
			Sheet:     getEnvOrDefault("DATA_SHEET", ""),
			Query:     getEnvOrDefault("DATA_QUERY", ""),
			NotesFile: getEnvOrDefault("DATASET_NOTES", ""),
			Rows:      getEnvIntOrDefault("SYNTHETIC_ROWS", 500),
		},
		Session: SessionConfig{
			TTL:            getEnvDurationOrDefault("SESSION_TTL", 30*time.Minute),
			SweepInterval:  getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", time.Minute),
			StateRetention: getEnvDurationOrDefault("STATE_RETENTION", 24*time.Hour),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if config.Data.File != "" && config.Data.Query != "" {
		return errors.ConfigInvalid("DATA_FILE and DATA_QUERY are mutually exclusive")
	}
	if config.Data.Query != "" && !config.Database.Enabled() {
		return errors.ConfigInvalid("DATA_QUERY requires DATABASE_URL")
	}
	if config.Data.Rows <= 0 {
		return errors.ConfigInvalid("SYNTHETIC_ROWS must be positive")
	}
	if config.Session.TTL <= 0 || config.Session.SweepInterval <= 0 || config.Session.StateRetention <= 0 {
		return errors.ConfigInvalid("session durations must be positive")
	}
	if config.Server.BasePath == "" || config.Server.BasePath[0] != '/' {
		return errors.ConfigInvalid("PIVOT_BASE_PATH must start with /")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
