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

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []string
	add := func(field, message string) {
		errs = append(errs, ValidationError{Field: field, Message: message}.Error())
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
	case "sqlite":
		if env == Production {
			add("DATABASE_DRIVER", "sqlite is not supported in production")
		}
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DATABASE_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DatabaseDriver))
	}

	if cfg.JWTSecret == "" {
		if env == CI {
			add("JWT_SECRET", "environment variable is required in CI environment")
		} else {
			add("jwt_secret", "secret or JWT_SECRET is required")
		}
	}
	if env == Production && cfg.DatabaseDriver == "postgres" && cfg.DBPassword == "" {
		add("db_password", "secret is required in production")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}
	if cfg.PageSize < 1 {
		add("PAGE_SIZE", "must be at least 1")
	}
	if cfg.RecipeWriteLimit < 0 {
		add("RATE_LIMIT_RECIPE_WRITES", "must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
