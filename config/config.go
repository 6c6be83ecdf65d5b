package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DatabaseDriver string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string

	// Redis configuration
	RedisURL      string
	RedisPassword string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage
	S3BucketName    string
	AWSRegion       string
	S3PublicBaseURL string

	// Logging
	LogLevel  string
	LogFormat string

	// API behaviour
	AllowAnonymousRecipes bool
	RecipeWriteLimit      int
	CORSAllowedOrigins    []string
	PageSize              int
}

// secretKeys are the values that Docker secrets override outside of CI
var secretKeys = map[string]string{
	"db_password":    "DB_PASSWORD",
	"jwt_secret":     "JWT_SECRET",
	"redis_password": "REDIS_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "foodgram")
	v.SetDefault("DB_NAME", "foodgram")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "foodgram.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ALLOW_ANONYMOUS_RECIPES", true)
	v.SetDefault("RATE_LIMIT_RECIPE_WRITES", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("PAGE_SIZE", 6)
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	// Outside CI, sensitive values come from Docker secrets when present
	if env != CI {
		for secret, key := range secretKeys {
			if value := readSecret(secret); value != "" {
				v.Set(key, value)
			}
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	return &Config{
		ServerPort:            v.GetString("SERVER_PORT"),
		ServerHost:            v.GetString("SERVER_HOST"),
		DatabaseDriver:        strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBName:                v.GetString("DB_NAME"),
		DBSSLMode:             v.GetString("DB_SSL_MODE"),
		SQLitePath:            v.GetString("SQLITE_PATH"),
		RedisURL:              v.GetString("REDIS_URL"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		TokenTTL:              ttl,
		S3BucketName:          v.GetString("S3_BUCKET_NAME"),
		AWSRegion:             v.GetString("AWS_REGION"),
		S3PublicBaseURL:       v.GetString("S3_PUBLIC_BASE_URL"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		AllowAnonymousRecipes: v.GetBool("ALLOW_ANONYMOUS_RECIPES"),
		RecipeWriteLimit:      v.GetInt("RATE_LIMIT_RECIPE_WRITES"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		PageSize:              v.GetInt("PAGE_SIZE"),
	}, nil
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the address the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
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
