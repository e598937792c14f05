package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Vector-ETL application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Meta      MetaConfig
	Sheet     SheetConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MetaConfig configures the Meta Graph insights feed.
type MetaConfig struct {
	BaseURL     string
	APIVersion  string
	AdAccountID string
	AccessToken string
	// RPS throttles outbound Graph API calls.
	RPS   float64
	Burst int
}

// SheetConfig configures the published-CSV metadata feed.
type SheetConfig struct {
	CSVURL       string
	FetchTimeout time.Duration
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("VECTOR_ETL_HTTP_ADDR", ":8080"),
			Env:             getEnv("VECTOR_ETL_ENV", "development"),
			ShutdownTimeout: getDurationEnv("VECTOR_ETL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("VECTOR_ETL_DB_HOST", "localhost"),
			Port:     getIntEnv("VECTOR_ETL_DB_PORT", 5432),
			User:     getEnv("VECTOR_ETL_DB_USER", "vectoretl"),
			Password: getEnv("VECTOR_ETL_DB_PASSWORD", "vectoretl_secret"),
			DBName:   getEnv("VECTOR_ETL_DB_NAME", "vectoretl"),
			SSLMode:  getEnv("VECTOR_ETL_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("VECTOR_ETL_DB_MAX_CONNS", 10),
			MinConns: getIntEnv("VECTOR_ETL_DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("VECTOR_ETL_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("VECTOR_ETL_REDIS_PASSWORD", ""),
			DB:       getIntEnv("VECTOR_ETL_REDIS_DB", 0),
		},
		Meta: MetaConfig{
			BaseURL:     getEnv("VECTOR_ETL_META_BASE_URL", "https://graph.facebook.com"),
			APIVersion:  getEnv("VECTOR_ETL_META_API_VERSION", "v19.0"),
			AdAccountID: getEnv("VECTOR_ETL_META_AD_ACCOUNT_ID", ""),
			AccessToken: getEnv("VECTOR_ETL_META_ACCESS_TOKEN", ""),
			RPS:         getFloatEnv("VECTOR_ETL_META_RPS", 5),
			Burst:       getIntEnv("VECTOR_ETL_META_BURST", 5),
		},
		Sheet: SheetConfig{
			CSVURL:       getEnv("VECTOR_ETL_SHEET_CSV_URL", ""),
			FetchTimeout: getDurationEnv("VECTOR_ETL_SHEET_FETCH_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("VECTOR_ETL_AUTH_ENABLED", true),
			MasterKey: getEnv("VECTOR_ETL_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("VECTOR_ETL_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("VECTOR_ETL_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("VECTOR_ETL_RATE_LIMIT_RPS", 10),
			Burst:   getIntEnv("VECTOR_ETL_RATE_LIMIT_BURST", 5),
		},
		Log: LogConfig{
			Level:  getEnv("VECTOR_ETL_LOG_LEVEL", "info"),
			Format: getEnv("VECTOR_ETL_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("VECTOR_ETL_METRICS_ENABLED", true),
			Path:    getEnv("VECTOR_ETL_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("VECTOR_ETL_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Meta.AdAccountID == "" {
		return fmt.Errorf("VECTOR_ETL_META_AD_ACCOUNT_ID is required")
	}
	if c.Meta.AccessToken == "" {
		return fmt.Errorf("VECTOR_ETL_META_ACCESS_TOKEN is required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
