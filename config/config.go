// Package config loads fluentsql and PostgreSQL settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Config holds everything needed to open a fluentsql.DB.
type Config struct {
	Driver   string           `json:"driver"`
	Postgres PostgreSQLConfig `json:"postgres"`
	Builder  BuilderConfig    `json:"builder"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	DSN             string        `json:"dsn"`
	SSLMode         string        `json:"sslMode"`
	ConnectTimeout  int           `json:"connectTimeout"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// BuilderConfig holds the query builder settings.
type BuilderConfig struct {
	TablePrefix string `json:"tablePrefix"`
	PageLimit   int    `json:"pageLimit"`
	IDColumn    string `json:"idColumn"`
	Debug       bool   `json:"debug"`
}

// LoadFromEnv reads the configuration with this precedence:
// 1. Explicit environment variables
// 2. Values from the .env file (if it exists)
// 3. Hardcoded defaults
func LoadFromEnv() (*Config, error) {
	// godotenv.Load never overrides variables that are already set.
	for _, envPath := range []string{".env", "../.env"} {
		if err := godotenv.Load(envPath); err == nil {
			break
		}
	}
	return load(os.Getenv)
}

// LoadFromMap reads the configuration from envMap only. It has no side effects.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return load(func(key string) string { return envMap[key] })
}

func load(getenv func(string) string) (*Config, error) {
	env := lookup(getenv)
	cfg := &Config{
		Driver: strings.ToLower(env.getOrDefault("DB_DRIVER", DriverPQ)),
		Postgres: PostgreSQLConfig{
			Host:            env.getOrDefault("POSTGRES_HOST", "localhost"),
			Port:            env.getInt("POSTGRES_PORT", 5432),
			Username:        env.getOrDefault("POSTGRES_USERNAME", ""),
			Password:        env.getOrDefault("POSTGRES_PASSWORD", ""),
			Database:        env.getOrDefault("POSTGRES_DATABASE", "fluentsql"),
			DSN:             env.getOrDefault("POSTGRES_DSN", ""),
			SSLMode:         env.getOrDefault("POSTGRES_SSL_MODE", "disable"),
			ConnectTimeout:  env.getInt("POSTGRES_CONNECT_TIMEOUT", 10),
			MaxOpenConns:    env.getInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    env.getInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: time.Duration(env.getInt("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Builder: BuilderConfig{
			TablePrefix: env.getOrDefault("FLUENTSQL_TABLE_PREFIX", ""),
			PageLimit:   env.getInt("FLUENTSQL_PAGE_LIMIT", 20),
			IDColumn:    env.getOrDefault("FLUENTSQL_ID_COLUMN", "id"),
			Debug:       env.getBool("FLUENTSQL_DEBUG", false),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	validDrivers := []string{DriverPQ, DriverPGX}
	if !contains(validDrivers, c.Driver) {
		errors = append(errors, fmt.Sprintf("DB_DRIVER must be one of: %s", strings.Join(validDrivers, ", ")))
	}
	if c.Postgres.DSN == "" && strings.TrimSpace(c.Postgres.Host) == "" {
		errors = append(errors, "POSTGRES_HOST or POSTGRES_DSN is required")
	}
	if c.Builder.PageLimit <= 0 {
		errors = append(errors, "FLUENTSQL_PAGE_LIMIT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}
	return nil
}

// Helper functions
type lookup func(string) string

func (l lookup) getOrDefault(key, defaultValue string) string {
	if value := l(key); value != "" {
		return value
	}
	return defaultValue
}

func (l lookup) getInt(key string, defaultValue int) int {
	if value := l(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (l lookup) getBool(key string, defaultValue bool) bool {
	if value := l(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
