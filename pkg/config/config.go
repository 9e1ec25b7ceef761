// Package config loads codecomposer settings from the environment
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Composition defaults; command-line flags and request fields win over these
	Style string
	Key   string
	Tempo int
	Seed  int64

	// StylesFile is an optional YAML file merged over the built-in styles
	StylesFile string

	// DatabasePath is the SQLite composition history; empty disables it
	DatabasePath string

	// Observability
	SentryDSN string
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Port:         getEnv("PORT", "8080"),
		Style:        getEnv("CODECOMPOSER_STYLE", "default"),
		Key:          getEnv("CODECOMPOSER_KEY", ""),
		Tempo:        getEnvInt("CODECOMPOSER_TEMPO", 0),
		Seed:         int64(getEnvInt("CODECOMPOSER_SEED", 0)),
		StylesFile:   getEnv("CODECOMPOSER_STYLES_FILE", ""),
		DatabasePath: getEnv("CODECOMPOSER_DB", defaultDatabasePath()),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
	}
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "codecomposer", "history.db")
}
