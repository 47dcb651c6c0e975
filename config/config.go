// Package config loads daemon settings from JSON plus environment
// overrides, and reward tables from their YAML files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rewardkit/adapters/redis"
	"rewardkit/adapters/sqlx"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete daemon configuration
type Config struct {
	Environment Environment `json:"environment" env:"REWARDKIT_ENV"`
	Profile     string      `json:"profile" env:"REWARDKIT_PROFILE"`

	// Reward table file loaded separately via LoadTables
	RewardsFile string `json:"rewards_file" env:"REWARDKIT_REWARDS_FILE"`

	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
	API     APIConfig     `json:"api"`
	Webhook WebhookConfig `json:"webhook"`
}

// StorageConfig holds persistence adapter configuration
type StorageConfig struct {
	Adapter string       `json:"adapter" env:"REWARDKIT_STORAGE_ADAPTER"`
	Redis   redis.Config `json:"redis,omitempty"`
	SQL     sqlx.Config  `json:"sql,omitempty"`
	File    FileConfig   `json:"file,omitempty"`
}

// FileConfig holds YAML file storage configuration
type FileConfig struct {
	Dir string `json:"dir" env:"REWARDKIT_STORAGE_FILE_DIR"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" env:"REWARDKIT_LOG_LEVEL"`
	Format     string            `json:"format" env:"REWARDKIT_LOG_FORMAT"`
	Output     string            `json:"output" env:"REWARDKIT_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// APIConfig holds the admin REST API and event stream configuration
type APIConfig struct {
	Enabled          bool     `json:"enabled" env:"REWARDKIT_API_ENABLED"`
	Address          string   `json:"address" env:"REWARDKIT_API_ADDR"`
	PathPrefix       string   `json:"path_prefix" env:"REWARDKIT_API_PATH_PREFIX"`
	CORSOrigin       string   `json:"cors_origin" env:"REWARDKIT_API_CORS_ORIGIN"`
	APIKeys          []string `json:"api_keys,omitempty" env:"REWARDKIT_API_KEYS"`
	RateLimitEnabled bool     `json:"rate_limit_enabled" env:"REWARDKIT_API_RATE_LIMIT_ENABLED"`
	RateLimitRPM     int      `json:"rate_limit_rpm" env:"REWARDKIT_API_RATE_LIMIT_RPM"`
	RateLimitBurst   int      `json:"rate_limit_burst" env:"REWARDKIT_API_RATE_LIMIT_BURST"`
}

// WebhookConfig holds outbound event webhook configuration
type WebhookConfig struct {
	Endpoints []string `json:"endpoints,omitempty" env:"REWARDKIT_WEBHOOK_ENDPOINTS"`
	Events    []string `json:"events,omitempty" env:"REWARDKIT_WEBHOOK_EVENTS"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file. Environment
// variables override file values.
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	file, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		RewardsFile: "./config/rewards.yml",
		Storage: StorageConfig{
			Adapter: "memory",
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
			File: FileConfig{
				Dir: "./data/users",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		API: APIConfig{
			Enabled:        false,
			Address:        ":8080",
			PathPrefix:     "/api",
			CORSOrigin:     "*",
			RateLimitRPM:   60,
			RateLimitBurst: 10,
		},
		Webhook: WebhookConfig{},
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if c.RewardsFile == "" {
		errs = append(errs, "rewards_file cannot be empty")
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("api config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	cfg := *c

	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
