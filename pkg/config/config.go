package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meridianworks/meridian/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Cache configuration
	Cache CacheConfig

	// Observability configuration
	Observability ObservabilityConfig

	// SettingsPath points at the YAML settings file carrying company
	// identity and the recognized owner email.
	SettingsPath string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds the directory database configuration
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds profile cache configuration
type CacheConfig struct {
	// LRUSize is the in-process cache capacity in entries.
	LRUSize int
	// TTL bounds how stale a cached profile may be served.
	TTL time.Duration
	// RedisURL enables the shared cache backend when non-empty.
	RedisURL      string
	RedisPassword string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("MERIDIAN_HOST", "0.0.0.0"),
			Port:            getEnv("MERIDIAN_PORT", "8080"),
			ReadTimeout:     getEnvDuration("MERIDIAN_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("MERIDIAN_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("MERIDIAN_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("MERIDIAN_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("MERIDIAN_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("MERIDIAN_POSTGRES_URL", ""),
			MaxConns: getEnvInt("MERIDIAN_POSTGRES_MAX_CONNS", 10),
			MinConns: getEnvInt("MERIDIAN_POSTGRES_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			LRUSize:       getEnvInt("MERIDIAN_CACHE_SIZE", 1024),
			TTL:           getEnvDuration("MERIDIAN_CACHE_TTL", 5*time.Minute),
			RedisURL:      getEnv("MERIDIAN_REDIS_URL", ""),
			RedisPassword: getEnv("MERIDIAN_REDIS_PASSWORD", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("MERIDIAN_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("MERIDIAN_METRICS_ENABLED", true),
		},
		SettingsPath: getEnv("MERIDIAN_SETTINGS_FILE", "settings.yaml"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Cache.LRUSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.SettingsPath == "" {
		return fmt.Errorf("settings file path is required")
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
