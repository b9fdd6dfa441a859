package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PostgresConfig holds the store connection settings
type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Store configuration
	Postgres PostgresConfig
	// StoreTimeout bounds every store query
	StoreTimeout time.Duration

	// Face server configuration
	FaceServerURL string
	// FaceTimeout bounds every detector call
	FaceTimeout time.Duration

	// Policy file with the recommendation tuning (hot-reloaded)
	PolicyPath string

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics    bool
	MetricsNamespace string

	// Product cache
	CacheTTL time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		Postgres: PostgresConfig{
			Host:         getEnv("POSTGRES_HOST", "localhost"),
			Port:         getEnvInt("POSTGRES_PORT", 5432),
			User:         getEnv("POSTGRES_USER", "vending"),
			Password:     getEnv("POSTGRES_PASSWORD", ""),
			Database:     getEnv("POSTGRES_DATABASE", "vending"),
			SSLMode:      getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnLifetime: getEnvDuration("POSTGRES_CONN_LIFETIME", 5*time.Minute),
		},
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 3*time.Second),

		FaceServerURL: getEnv("FACE_SERVER_URL", "http://localhost:3002"),
		FaceTimeout:   getEnvDuration("FACE_TIMEOUT", 2*time.Second),

		PolicyPath: getEnv("POLICY_PATH", ""),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", true),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "vending"),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.Postgres.Password == "" {
			return fmt.Errorf("POSTGRES_PASSWORD is required in production")
		}
		if c.FaceServerURL == "" {
			return fmt.Errorf("FACE_SERVER_URL is required")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
