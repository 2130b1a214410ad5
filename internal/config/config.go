// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
	RateLimitRPM   int
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	URI      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LogConfig selects the zerolog level and output format
type LogConfig struct {
	Level  string
	Format string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Auth           *AuthConfig
	Log            *LogConfig
	FeedPageSize   int
	NotifyTimeout  time.Duration
	AllowedOrigins []string
	Debug          bool
}

const defaultJWTSecret = "inkwell-development-secret-change-me"

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
		RateLimitRPM:   300,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:    "localhost",
		Port:    5432,
		Name:    "postgres",
		SSLMode: "require",
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env file from the usual locations. A missing file is fine.
	for _, location := range []string{".env", "../../.env"} {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	serverConfig := DefaultConfig()
	serverConfig.Port = getEnvInt("PORT", serverConfig.Port)
	serverConfig.Host = getEnvOrDefault("HOST", serverConfig.Host)
	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}
	serverConfig.RateLimitRPM = getEnvInt("RATE_LIMIT_RPM", serverConfig.RateLimitRPM)

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server:   serverConfig,
		Database: dbConfig,
		Auth: &AuthConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", defaultJWTSecret),
			TokenTTL:  getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Log: &LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		FeedPageSize:   getEnvInt("FEED_PAGE_SIZE", 10),
		NotifyTimeout:  getEnvDuration("NOTIFY_TIMEOUT", 2*time.Second),
		AllowedOrigins: []string{"*"}, // Default to allow all origins
		Debug:          os.Getenv("DEBUG") == "true",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if config.Debug {
		config.Log.Level = "debug"
		config.Log.Format = "console"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadDatabaseConfig prefers DATABASE_URL and falls back to the DB_* parts.
func loadDatabaseConfig() (*DatabaseConfig, error) {
	dbConfig := DefaultDatabaseConfig()

	if uri := os.Getenv("DATABASE_URL"); uri != "" {
		dbConfig.URI = uri
		dbConfig.SSLMode = getSSLModeFromURI(uri)
		return dbConfig, nil
	}

	dbConfig.Host = getEnvOrDefault("DB_HOST", dbConfig.Host)
	dbConfig.Port = getEnvInt("DB_PORT", dbConfig.Port)
	dbConfig.User = os.Getenv("DB_USER")
	if dbConfig.User == "" {
		return nil, fmt.Errorf("DB_USER environment variable is required when DATABASE_URL is not set")
	}
	dbConfig.Password = os.Getenv("DB_PASSWORD")
	if dbConfig.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is required when DATABASE_URL is not set")
	}
	dbConfig.Name = getEnvOrDefault("DB_NAME", dbConfig.Name)
	dbConfig.SSLMode = getEnvOrDefault("DB_SSL_MODE", dbConfig.SSLMode)

	dbConfig.URI = fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.Name,
		dbConfig.SSLMode,
	)
	return dbConfig, nil
}

// Validate checks settings that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.Database == nil || c.Database.URI == "" {
		return fmt.Errorf("database connection string is empty")
	}
	if c.FeedPageSize <= 0 {
		return fmt.Errorf("FEED_PAGE_SIZE must be positive, got %d", c.FeedPageSize)
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive")
	}
	return nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Helper function to extract sslmode from a DSN, defaults to "require"
func getSSLModeFromURI(uri string) string {
	parts := strings.SplitN(uri, "?", 2)
	if len(parts) < 2 {
		return "require"
	}
	for _, param := range strings.Split(parts[1], "&") {
		kv := strings.SplitN(param, "=", 2)
		if len(kv) == 2 && kv[0] == "sslmode" {
			return kv[1]
		}
	}
	return "require"
}
