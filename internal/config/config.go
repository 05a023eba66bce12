package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration (session vaults and task queue)
	Redis RedisConfig

	// Auth Configuration
	Auth AuthConfig

	// HTTP Configuration
	HTTP HTTPConfig

	// Worker Configuration
	Worker WorkerConfig

	// Logging Configuration
	Logging LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// sqlite file path, or a postgres:// URL
	URL string `env:"DATABASE_URL" envDefault:"tenantgate.sqlite"`
}

// IsPostgres reports whether the configured URL points at PostgreSQL
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"` // Redis address (host:port)
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// AuthConfig holds token and session settings
type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	Port        string   `env:"HTTP_PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

// WorkerConfig holds background worker settings
type WorkerConfig struct {
	Concurrency          int    `env:"WORKER_CONCURRENCY" envDefault:"4"`
	SessionSweepSchedule string `env:"SESSION_SWEEP_SCHEDULE" envDefault:"*/15 * * * *"` // empty disables the sweep
	AsynqmonPort         string `env:"ASYNQMON_PORT" envDefault:"8090"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}
