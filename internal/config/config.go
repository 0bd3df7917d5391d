package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Configuration
	HTTP HTTPConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Auth Configuration
	Auth AuthConfig

	// Logging Configuration
	Logging LoggingConfig

	// Worker Configuration
	Worker WorkerConfig
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr string // Listen address (host:port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	CartCleanupSchedule string // cron expression (5-field)
	CartMaxAgeHours     int    // cart items untouched longer than this are purged
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	// Database URL - default to local sqlite file, allow override for dev
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "gros.sqlite"
	}

	// Redis address - default to localhost:6379, allow override for dev/docker
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// JWT secret - must be overridden in production
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "gros-dev-secret"
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	// Cart cleanup - nightly by default
	cartCleanupSchedule := os.Getenv("CART_CLEANUP_SCHEDULE")
	if cartCleanupSchedule == "" {
		cartCleanupSchedule = "0 3 * * *"
	}

	cartMaxAgeHours := 72
	if v := os.Getenv("CART_MAX_AGE_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cartMaxAgeHours = parsed
		}
	}

	return &Config{
		HTTP: HTTPConfig{
			Addr: httpAddr,
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		Worker: WorkerConfig{
			CartCleanupSchedule: cartCleanupSchedule,
			CartMaxAgeHours:     cartMaxAgeHours,
		},
	}, nil
}
