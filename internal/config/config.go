package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Port string

	// Rate limiting
	RateLimiterType string // "kv" or "memory"
	RateLimit       int    // requests allowed per window per client
	RateLimitWindow int    // window length in seconds

	// Result cache
	CacheTTL int // seconds a successful lookup stays cached

	// Batch queries
	BatchMax int // max IPs resolved per batch request

	// Key-value store
	StoreType     string // "redis" or "memory"
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Upstream provider
	UpstreamURL     string
	UpstreamTimeout time.Duration
	SourceLabel     string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file is honored for local development; in
// production/Docker the variables are set directly.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port: getEnv("PORT", "3000"),

		// Defaults mirror the observed gateway limits: 60 requests per
		// 60-second window per client.
		RateLimiterType: getEnv("RATE_LIMITER_TYPE", "kv"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 60),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		CacheTTL: getEnvAsInt("CACHE_TTL", 300),
		BatchMax: getEnvAsInt("BATCH_MAX", 10),

		StoreType:     getEnv("STORE_TYPE", "redis"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		UpstreamURL:     getEnv("UPSTREAM_URL", "https://api.pearktrue.cn/api/ip/details/"),
		UpstreamTimeout: time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT", 5)) * time.Second,
		SourceLabel:     getEnv("UPSTREAM_SOURCE_LABEL", "api.pearktrue.cn"),
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer.
// Returns default if not set or invalid.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
