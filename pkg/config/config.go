// Package config provides configuration for the GiftVault services.
//
// Values are resolved in three layers: built-in defaults, an optional YAML
// file (path taken from GIFTVAULT_CONFIG), then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the vault API server and CLI.
type Config struct {
	// Database configuration
	DatabaseDSN string `yaml:"database_dsn"`

	// Authentication for the creator (admin) endpoints.
	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`

	// AdminPassword gates the creator setup flow. This is a casual
	// deterrent shared with the creator, not an access-control boundary.
	// If AdminPasswordHash (bcrypt) is set it takes precedence.
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`

	// Server configuration
	APIPort int    `yaml:"api_port"`
	APIHost string `yaml:"api_host"`

	// BaseURL is the public origin used to build shareable links.
	BaseURL string `yaml:"base_url"`

	// ServerURL is the vault API endpoint the CLI talks to.
	ServerURL string `yaml:"server_url"`

	// LocalDBPath is the SQLite file backing the local store.
	LocalDBPath string `yaml:"local_db_path"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Media encryption at rest (optional). Age X25519 keys; the public key
	// is enough to store, the private key is required to read back.
	AgePublicKey  string `yaml:"age_public_key"`
	AgePrivateKey string `yaml:"age_private_key"`
}

// Load reads configuration from the optional YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("GIFTVAULT_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration without validating required fields.
// Useful for the CLI and for testing.
func LoadWithDefaults() *Config {
	cfg := defaults()
	if path := os.Getenv("GIFTVAULT_CONFIG"); path != "" {
		// Best effort for the CLI; a broken file is reported by Load.
		_ = cfg.applyFile(path)
	}
	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	return &Config{
		DatabaseDSN:     "postgres://localhost:5432/giftvault?sslmode=disable",
		JWTExpiry:       24 * time.Hour,
		AdminPassword:   "admin123",
		APIPort:         8080,
		APIHost:         "0.0.0.0",
		BaseURL:         "http://localhost:8080",
		ServerURL:       "http://localhost:8080",
		LocalDBPath:     "giftvault.db",
		ShutdownTimeout: 30 * time.Second,
	}
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.DatabaseDSN = getEnv("DATABASE_URL", c.DatabaseDSN)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTExpiry = getDurationEnv("JWT_EXPIRY", c.JWTExpiry)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", c.AdminPasswordHash)
	c.APIPort = getIntEnv("API_PORT", c.APIPort)
	c.APIHost = getEnv("API_HOST", c.APIHost)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.ServerURL = getEnv("GIFTVAULT_SERVER", c.ServerURL)
	c.LocalDBPath = getEnv("GIFTVAULT_DB", c.LocalDBPath)
	c.ShutdownTimeout = getDurationEnv("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.AgePublicKey = getEnv("AGE_PUBLIC_KEY", c.AgePublicKey)
	c.AgePrivateKey = getEnv("AGE_PRIVATE_KEY", c.AgePrivateKey)
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
