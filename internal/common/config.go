package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Transcriber TranscriberConfig
	Export      ExportConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// TranscriberConfig holds transcription-engine configuration
type TranscriberConfig struct {
	Command   string // recognizer binary name or absolute path
	ModelName string // handwriting model identifier passed to the recognizer
	Endpoint  string // optional HTTP inference endpoint; empty -> exec engine
	Timeout   time.Duration
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	OutputDir string
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Transcriber: TranscriberConfig{
			Command:   getEnv("TROCR_COMMAND", "trocr"),
			ModelName: getEnv("TROCR_MODEL", "microsoft/trocr-base-handwritten"),
			Endpoint:  getEnv("TROCR_ENDPOINT", ""),
			Timeout:   getEnvAsDuration("TROCR_TIMEOUT", 2*time.Minute),
		},
		Export: ExportConfig{
			OutputDir: getEnv("EXPORT_DIR", "."),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration for commands that need a database.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Transcriber.Command == "" && c.Transcriber.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "TROCR_COMMAND or TROCR_ENDPOINT is required", ErrInvalidInput)
	}
	return nil
}
