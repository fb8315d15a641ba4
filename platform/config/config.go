// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides Redis connection settings for the offer cache
// and the background task queue.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetEnv() string
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetHTTPRateLimit() float64
	GetHTTPRateBurst() int
}

// OfferCacheConfig provides settings for the offer cache.
type OfferCacheConfig interface {
	GetOfferCacheTTL() time.Duration
	GetOfferIndexTTL() time.Duration
}

// DistributionConfig provides settings for the distribution orchestrator.
type DistributionConfig interface {
	GetSupplierTimeout() time.Duration
	GetSupplierRetries() int
	GetShoppingDeadline() time.Duration
}

// MarkupConfig provides settings for the markup policy table.
type MarkupConfig interface {
	GetMarkupTablePath() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketOfferAudit() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetIndexSweepInterval() time.Duration
}

// SupplierConfig provides settings for the supplier adapter registry.
type SupplierConfig interface {
	GetSupplierRateLimit() float64
	GetSupplierRateBurst() int
	GetSimulatedSuppliers() []string
	GetSimulatedSeed() int64
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	RedisURL         string
	RedisTLSInsecure bool

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	HTTPRateLimit float64
	HTTPRateBurst int

	OfferCacheTTL time.Duration
	OfferIndexTTL time.Duration

	SupplierTimeout  time.Duration
	SupplierRetries  int
	ShoppingDeadline time.Duration

	SupplierRateLimit  float64
	SupplierRateBurst  int
	SimulatedSuppliers []string
	SimulatedSeed      int64

	MarkupTablePath string

	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinioBucketOfferAudit string

	AsynqQueueName     string
	AsynqConcurrency   int
	IndexSweepInterval time.Duration
}

// Load reads configuration from the environment, honoring a .env file when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		HTTPRateLimit: mustFloat(getEnv("HTTP_RATE_LIMIT", "50")),
		HTTPRateBurst: mustInt(getEnv("HTTP_RATE_BURST", "100")),

		OfferCacheTTL: mustDuration(getEnv("OFFER_CACHE_TTL", "20m")),
		OfferIndexTTL: mustDuration(getEnv("OFFER_INDEX_TTL", "45m")),

		SupplierTimeout:  mustDuration(getEnv("SUPPLIER_TIMEOUT", "8s")),
		SupplierRetries:  mustInt(getEnv("SUPPLIER_RETRIES", "2")),
		ShoppingDeadline: mustDuration(getEnv("SHOPPING_DEADLINE", "25s")),

		SupplierRateLimit:  mustFloat(getEnv("SUPPLIER_RATE_LIMIT", "20")),
		SupplierRateBurst:  mustInt(getEnv("SUPPLIER_RATE_BURST", "40")),
		SimulatedSuppliers: splitCSV(getEnv("SIMULATED_SUPPLIERS", "")),
		SimulatedSeed:      int64(mustInt(getEnv("SIMULATED_SEED", "0"))),

		MarkupTablePath: getEnv("MARKUP_TABLE_PATH", "config/markup.yaml"),

		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketOfferAudit: getEnv("MINIO_BUCKET_OFFER_AUDIT", "offer-audit"),

		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "farebridge"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		IndexSweepInterval: mustDuration(getEnv("INDEX_SWEEP_INTERVAL", "5m")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.OfferCacheTTL <= 0 {
		return nil, fmt.Errorf("OFFER_CACHE_TTL must be a positive duration")
	}
	if cfg.OfferIndexTTL < cfg.OfferCacheTTL {
		// The offer-id index must outlive its entry so verification can
		// still classify expired offers (§ supplier-reported invalidity).
		return nil, fmt.Errorf("OFFER_INDEX_TTL must be >= OFFER_CACHE_TTL")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

// GetDatabaseURL returns the database connection URL.
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// GetRedisURL returns the Redis connection URL.
func (c *Config) GetRedisURL() string { return c.RedisURL }

// GetRedisTLSInsecure reports whether TLS verification is disabled for Redis.
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// HTTPConfig implementation.
func (c *Config) GetEnv() string            { return c.Env }
func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }
func (c *Config) GetHTTPRateLimit() float64 { return c.HTTPRateLimit }
func (c *Config) GetHTTPRateBurst() int     { return c.HTTPRateBurst }

// OfferCacheConfig implementation.
func (c *Config) GetOfferCacheTTL() time.Duration { return c.OfferCacheTTL }
func (c *Config) GetOfferIndexTTL() time.Duration { return c.OfferIndexTTL }

// DistributionConfig implementation.
func (c *Config) GetSupplierTimeout() time.Duration  { return c.SupplierTimeout }
func (c *Config) GetSupplierRetries() int            { return c.SupplierRetries }
func (c *Config) GetShoppingDeadline() time.Duration { return c.ShoppingDeadline }

// MarkupConfig implementation.
func (c *Config) GetMarkupTablePath() string { return c.MarkupTablePath }

// MinIOConfig implementation.
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketOfferAudit() string { return c.MinioBucketOfferAudit }
func (c *Config) IsMinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// SchedulerConfig implementation.
func (c *Config) GetAsynqQueueName() string            { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int             { return c.AsynqConcurrency }
func (c *Config) GetIndexSweepInterval() time.Duration { return c.IndexSweepInterval }

// SupplierConfig implementation.
func (c *Config) GetSupplierRateLimit() float64   { return c.SupplierRateLimit }
func (c *Config) GetSupplierRateBurst() int       { return c.SupplierRateBurst }
func (c *Config) GetSimulatedSuppliers() []string { return c.SimulatedSuppliers }
func (c *Config) GetSimulatedSeed() int64         { return c.SimulatedSeed }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func mustFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
