package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/partdex/partdex/pkg/observability"
	"github.com/partdex/partdex/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Media URL resolution
	Media MediaConfig

	// Observability configuration
	Observability ObservabilityConfig
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

// MediaConfig controls how stored file paths are resolved into URLs served
// to the browser.
type MediaConfig struct {
	ImageBaseURL string
	PDFBaseURL   string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Media:         loadMediaConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PARTDEX_HOST", "0.0.0.0"),
		Port:            getEnv("PARTDEX_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PARTDEX_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PARTDEX_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PARTDEX_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PARTDEX_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("PARTDEX_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if dbPath := getEnv("PARTDEX_DB_PATH", ""); dbPath != "" {
		cfg.SQLitePath = dbPath
	}
	if busyTimeout := getEnvDuration("PARTDEX_DB_BUSY_TIMEOUT", 0); busyTimeout > 0 {
		cfg.BusyTimeout = busyTimeout
	}
	if queryTimeout := getEnvDuration("PARTDEX_DB_QUERY_TIMEOUT", 0); queryTimeout > 0 {
		cfg.QueryTimeout = queryTimeout
	}

	// S3 config
	cfg.S3Enabled = getEnvBool("PARTDEX_S3_ENABLED", false)
	if s3Endpoint := getEnv("PARTDEX_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("PARTDEX_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("PARTDEX_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3AccessKey := getEnv("PARTDEX_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("PARTDEX_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	if s3UsePathStyle := getEnv("PARTDEX_S3_USE_PATH_STYLE", ""); s3UsePathStyle != "" {
		cfg.S3UsePathStyle = strings.ToLower(s3UsePathStyle) == "true"
	}
	if presignExpiry := getEnvDuration("PARTDEX_S3_PRESIGN_EXPIRY", 0); presignExpiry > 0 {
		cfg.PresignExpiry = presignExpiry
	}

	// Redis config
	if redisURL := getEnv("PARTDEX_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("PARTDEX_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("PARTDEX_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("PARTDEX_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		cfg.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("PARTDEX_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	// Cache config
	if cacheEnabled := getEnv("PARTDEX_CACHE_ENABLED", ""); cacheEnabled != "" {
		cfg.CacheEnabled = strings.ToLower(cacheEnabled) == "true"
	}
	if l1CacheSize := getEnvInt("PARTDEX_L1_CACHE_SIZE", 0); l1CacheSize > 0 {
		cfg.L1CacheSize = l1CacheSize
	}

	return cfg
}

func loadMediaConfig() MediaConfig {
	return MediaConfig{
		ImageBaseURL: getEnv("PARTDEX_IMAGE_BASE_URL", "/images"),
		PDFBaseURL:   getEnv("PARTDEX_PDF_BASE_URL", "/pdfs"),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("PARTDEX_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("PARTDEX_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("PARTDEX_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("PARTDEX_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("PARTDEX_OTEL_SERVICE_NAME", "partdex"),
		OTelServiceVersion: getEnv("PARTDEX_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("PARTDEX_OTEL_INSECURE", true),
	}
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

	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Storage.S3Enabled {
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
