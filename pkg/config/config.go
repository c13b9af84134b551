// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Input sources
const (
	SourceCSV       = "csv"
	SourceSnowflake = "snowflake"
)

// Config represents the application configuration
type Config struct {
	// Input and artifacts
	Source       string
	InputPath    string
	ArtifactPath string
	ImagesDir    string

	// Cleaning settings
	DuplicateKey  string
	MaxReportRows int
	RenderCharts  bool

	// Database connections, loaded only when used
	AuditEnabled bool
	Snowflake    *SnowflakeConfig
	Postgres     *PostgresConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads an optional .env file and then reads the environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom loads the given env files, skipping missing ones, and then
// reads configuration from the environment. Variables already set win.
func LoadConfigFrom(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		// Default values
		Source:        strings.ToLower(getEnv("SOURCE", SourceCSV)),
		InputPath:     getEnv("INPUT_PATH", "notebook/data/sales_data.csv"),
		ArtifactPath:  getEnv("ARTIFACT_PATH", "artifacts/transformed_data.csv"),
		ImagesDir:     getEnv("IMAGES_DIR", "images"),
		DuplicateKey:  getEnv("DUPLICATE_KEY", "ORDERNUMBER"),
		MaxReportRows: getEnvAsInt("MAX_REPORT_ROWS", 20),
		RenderCharts:  getEnvAsBool("RENDER_CHARTS", true),
		AuditEnabled:  getEnvAsBool("AUDIT_ENABLED", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}

	// Load database configurations
	if cfg.Source == SourceSnowflake {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		cfg.Snowflake = snowConfig
	}

	if cfg.AuditEnabled {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
		}
		cfg.Postgres = pgConfig
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.InputPath == "" {
			return errors.New("input path is required for the csv source")
		}
	case SourceSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required for the snowflake source")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}

	if c.AuditEnabled && c.Postgres == nil {
		return errors.New("postgreSQL configuration is required when auditing is enabled")
	}

	if c.ArtifactPath == "" {
		return errors.New("artifact path is required")
	}

	if c.DuplicateKey == "" {
		return errors.New("duplicate key column is required")
	}

	if c.MaxReportRows < 0 {
		return errors.New("max report rows cannot be negative")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
