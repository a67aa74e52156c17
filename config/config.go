package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store backends understood by the store factory
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

const defaultDevJWTSecret = "tastybytes-dev-secret"

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Store configuration
	StoreType  string
	SQLitePath string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	RedisURL       string
	RedisKeyPrefix string

	// Auth configuration
	JWTSecret      string
	GoogleClientID string

	// Export publishing (optional)
	S3BucketName string
	AWSRegion    string
	S3Endpoint   string
	S3Presign    bool

	LogLevel string
}

// Defaults returns a Config carrying the development defaults.
func Defaults() *Config {
	return &Config{
		Environment:    Development,
		ServerPort:     "8080",
		ServerHost:     "0.0.0.0",
		CORSOrigins:    []string{"http://localhost:5173", "http://frontend:5173"},
		StoreType:      StoreSQLite,
		SQLitePath:     "tastybytes.db",
		DBHost:         "localhost",
		DBPort:         "5432",
		DBUser:         "postgres",
		DBName:         "tastybytes",
		DBSSLMode:      "disable",
		RedisHost:      "localhost",
		RedisPort:      "6379",
		RedisKeyPrefix: "tastybytes:",
		LogLevel:       "info",
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	cfg := Defaults()
	cfg.Environment = GetEnvironment()

	if err := loadFromEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", cfg.Environment, err)
	}

	// Development and test run without provisioned secrets
	if cfg.JWTSecret == "" && cfg.Environment.Local() {
		cfg.JWTSecret = defaultDevJWTSecret
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromEnvironment overlays environment variables on the defaults.
// Sensitive values fall back to Docker secrets, except in CI where only
// the environment is consulted.
func loadFromEnvironment(cfg *Config) error {
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.StoreType, "STORE_TYPE")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisKeyPrefix, "REDIS_KEY_PREFIX")
	setString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.S3BucketName, "S3_BUCKET_NAME")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.S3Endpoint, "S3_ENDPOINT")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if raw := os.Getenv("S3_PRESIGN"); raw != "" {
		presign, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("S3_PRESIGN must be a boolean: %w", err)
		}
		cfg.S3Presign = presign
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("REDIS_DB must be an integer: %w", err)
		}
		cfg.RedisDB = db
	}

	useSecrets := cfg.Environment.ReadsSecrets()
	cfg.DBUser = sensitive("DB_USER", "db_user", useSecrets, cfg.DBUser)
	cfg.DBPassword = sensitive("DB_PASSWORD", "db_password", useSecrets, "")
	cfg.RedisPassword = sensitive("REDIS_PASSWORD", "redis_password", useSecrets, "")
	cfg.RedisURL = sensitive("REDIS_URL", "redis_url", useSecrets, "")
	cfg.JWTSecret = sensitive("JWT_SECRET", "jwt_secret", useSecrets, "")

	cfg.StoreType = strings.ToLower(cfg.StoreType)
	return nil
}

func setString(dst *string, envVar string) {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		*dst = v
	}
}

// sensitive resolves a value from the environment, then from a Docker
// secret, then the fallback.
func sensitive(envVar, secret string, useSecrets bool, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	if useSecrets {
		if v := readSecret(secret); v != "" {
			return v
		}
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

// secretsDir returns the directory holding Docker secrets
func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	data, err := os.ReadFile(filepath.Join(secretsDir(), name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// RedisAddr returns host:port for the Redis connection
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// PostgresDSN returns the lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// S3Enabled reports whether exported documents can be published
func (c *Config) S3Enabled() bool {
	return c.S3BucketName != ""
}
