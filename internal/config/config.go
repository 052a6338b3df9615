package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Catalog
	CatalogSource   string
	CatalogFile     string
	DatabaseURL     string
	DatabaseMigrate bool
	// Conversation memory
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	// Optional YAML override for the classifier keyword table
	IntentRulesFile string
	// Request limits
	MaxMessageLength  int
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// Only trust X-Forwarded-For and friends behind a proxy that sets them
	TrustProxyHeaders bool
	// Logging
	LogLevel  string
	LogFormat string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:              getEnvDefault("PORT", "5000"),
		AllowedOrigin:     getEnvDefault("ALLOWED_ORIGIN", "*"),
		CatalogSource:     strings.ToLower(getEnvDefault("CATALOG_SOURCE", "embedded")),
		CatalogFile:       os.Getenv("CATALOG_FILE"),
		DatabaseURL:       os.Getenv("DB_URL"),
		DatabaseMigrate:   getEnvBoolDefault("DB_MIGRATE", true),
		SessionStore:      strings.ToLower(getEnvDefault("SESSION_STORE", "memory")),
		RedisAddr:         getEnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvIntDefault("REDIS_DB", 0),
		SessionTTL:        getEnvDurationDefault("SESSION_TTL", 30*time.Minute),
		IntentRulesFile:   os.Getenv("INTENT_RULES_FILE"),
		MaxMessageLength:  getEnvIntDefault("MAX_MESSAGE_LENGTH", 500),
		RateLimitRequests: getEnvIntDefault("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDurationDefault("RATE_LIMIT_WINDOW", 15*time.Minute),
		TrustProxyHeaders: getEnvBoolDefault("TRUST_PROXY_HEADERS", false),
		LogLevel:          getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvDefault("LOG_FORMAT", "console"),
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
