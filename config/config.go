package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// External nutrition database
	NutritionAPIURL    string
	NutritionUserAgent string
	NutritionTimeout   time.Duration

	// Logging and search behaviour
	Timezone        string
	HistoryMaxDays  int
	SearchRateLimit int
	LogMode         string

	// History exports
	S3BucketName string
	AWSRegion    string

	// Browser origins allowed by CORS
	CORSAllowedOrigins []string
}

const (
	defaultNutritionAPIURL    = "https://world.openfoodfacts.org/cgi/search.pl"
	defaultNutritionUserAgent = "macrolog/0.1.0 (dev)"
	defaultNutritionTimeout   = 8 * time.Second
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test, Production:
		loadSharedConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := loadAppConfig(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI using environment variables only
func loadCIConfig(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBName = getEnv("DB_NAME", "macrolog")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")

	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("TEST_REDIS_URL")
	cfg.RedisDB = 0

	return nil
}

// loadSharedConfig reads plain settings from the environment and sensitive
// values from the environment first, then Docker secrets.
func loadSharedConfig(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBName = getEnv("DB_NAME", "macrolog")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisURL = getEnvOrSecret("REDIS_URL", "redis_url")
	cfg.RedisDB = 0

	cfg.DBUser = getEnvOrSecret("DB_USER", "db_user")
	if cfg.DBUser == "" {
		cfg.DBUser = "postgres"
	}
	cfg.DBPassword = getEnvOrSecret("DB_PASSWORD", "db_password")
	cfg.JWTSecret = getEnvOrSecret("JWT_SECRET", "jwt_secret")
	cfg.RedisPassword = getEnvOrSecret("REDIS_PASSWORD", "redis_password")
}

func loadAppConfig(cfg *Config) error {
	cfg.NutritionAPIURL = getEnv("NUTRITION_API_URL", defaultNutritionAPIURL)
	cfg.NutritionUserAgent = getEnv("NUTRITION_USER_AGENT", defaultNutritionUserAgent)
	cfg.Timezone = getEnv("APP_TIMEZONE", "UTC")
	cfg.LogMode = getEnv("LOG_MODE", string(GetEnvironment()))
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.NutritionTimeout = defaultNutritionTimeout
	if raw := os.Getenv("NUTRITION_API_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid NUTRITION_API_TIMEOUT %q: %w", raw, err)
		}
		cfg.NutritionTimeout = d
	}

	var err error
	if cfg.HistoryMaxDays, err = getEnvInt("HISTORY_MAX_DAYS", 90); err != nil {
		return err
	}
	if cfg.SearchRateLimit, err = getEnvInt("SEARCH_RATE_LIMIT", 60); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone used to decide "today".
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func getEnvOrSecret(key, secret string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return readSecret(secret)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
