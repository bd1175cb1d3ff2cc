package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	LLM     LLMConfig
	Engine  EngineConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr        string `validate:"required"`
	CORSOrigins []string
}

// StorageConfig holds upload/output/job-store configuration.
type StorageConfig struct {
	UploadDir   string `validate:"required"`
	OutputDir   string `validate:"required"`
	MaxFileSize int64  `validate:"gt=0"` // bytes
	JobsDBPath  string // empty -> in-memory job store
}

// LLMConfig holds extraction-model client configuration.
type LLMConfig struct {
	BaseURL     string `validate:"required,url"`
	Model       string `validate:"required"`
	APIKey      string `validate:"required"`
	MaxTokens   int    `validate:"gte=0"`
	Temperature float32 `validate:"gte=0,lte=2"`
	Timeout     time.Duration
}

// EngineConfig holds reconciliation tolerances as decimal strings.
type EngineConfig struct {
	InvoiceTolerance string `validate:"required"`
	OrderTolerance   string `validate:"required"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("HTTP_ADDR", ":8000"),
			CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Storage: StorageConfig{
			UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
			OutputDir:   getEnv("OUTPUT_DIR", "./outputs"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024),
			JobsDBPath:  getEnv("JOBS_DB_PATH", ""),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 4096),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Engine: EngineConfig{
			InvoiceTolerance: getEnv("INVOICE_TOLERANCE", "0.01"),
			OrderTolerance:   getEnv("ORDER_TOLERANCE", "1"),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
