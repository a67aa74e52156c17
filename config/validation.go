package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment and store
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.StoreType {
	case StoreMemory:
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{"STORE_TYPE", "memory store is not durable and cannot be used in production"})
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for the sqlite store"})
		}
	case StorePostgres:
		for field, value := range map[string]string{
			"DB_HOST":     cfg.DBHost,
			"DB_PORT":     cfg.DBPort,
			"DB_NAME":     cfg.DBName,
			"DB_USER":     cfg.DBUser,
			"DB_PASSWORD": cfg.DBPassword,
		} {
			if value == "" {
				errs = append(errs, ValidationError{field, "is required for the postgres store"})
			}
		}
	case StoreRedis:
		if cfg.RedisURL == "" && (cfg.RedisHost == "" || cfg.RedisPort == "") {
			errs = append(errs, ValidationError{"REDIS_URL", "REDIS_URL or REDIS_HOST/REDIS_PORT is required for the redis store"})
		}
	default:
		errs = append(errs, ValidationError{"STORE_TYPE", fmt.Sprintf("unknown store type %q", cfg.StoreType)})
	}

	// In CI, sensitive values must come from environment variables;
	// in production, from the environment or Docker secrets
	if cfg.Environment.Strict() {
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{"JWT_SECRET", fmt.Sprintf("is required in %s environment", cfg.Environment)})
		}
	}
	if cfg.Environment == Production && cfg.JWTSecret == defaultDevJWTSecret {
		errs = append(errs, ValidationError{"JWT_SECRET", "must not use the development secret in production"})
	}

	if cfg.S3BucketName != "" && cfg.AWSRegion == "" {
		errs = append(errs, ValidationError{"AWS_REGION", "is required when S3_BUCKET_NAME is set"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
