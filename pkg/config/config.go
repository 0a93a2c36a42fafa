// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	DataDir         string
	ReportsDir      string
	DatabaseURL     string
	LogLevel        string
	ModelsConfig    string
	KoreanFontPath  string
	ReportRetention time.Duration
	PruneSchedule   string
}

// NewConfig loads configuration from environment variables, falling back
// to defaults that work for local development.
func NewConfig() *Config {
	return &Config{
		Port:            getEnv("PORT", "8000"),
		DataDir:         getEnv("DATA_DIR", "data"),
		ReportsDir:      getEnv("REPORTS_DIR", "reports"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ModelsConfig:    getEnv("MODELS_CONFIG", "config/models.yaml"),
		KoreanFontPath:  getEnv("KOREAN_FONT_PATH", "fonts/NanumGothic.ttf"),
		ReportRetention: getDuration("REPORT_RETENTION_HOURS", 72) * time.Hour,
		PruneSchedule:   getEnv("REPORT_PRUNE_SCHEDULE", "0 * * * *"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultHours int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(defaultHours)
}
