package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BaseURL   string // Required: public base URL, doubles as the token issuer
	JWTSecret string // Required: HMAC secret for access tokens and session cookies
	LoginURL  string // Optional: where unauthenticated browsers go (default: <BaseURL>/login)

	DatabaseFile string // Optional: path to SQLite database file (default: ./acacia.db)
	RedisURL     string // Optional: redis URL for the authorization-code store; empty means in-memory

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	CodeTTL              time.Duration // Authorization code lifetime (default: 10m)
	AccessTokenTTL       time.Duration // Access token lifetime (default: 1h)
	RefreshTokenTTL      time.Duration // Refresh token lifetime (default: 720h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-credential sweep interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		BaseURL:              getEnvOrDefault("AUTH_BASE_URL", "http://localhost:8080"),
		JWTSecret:            os.Getenv("AUTH_JWT_SECRET"),
		LoginURL:             os.Getenv("AUTH_LOGIN_URL"),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "acacia.db"),
		RedisURL:             os.Getenv("AUTH_REDIS_URL"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		CodeTTL:              getEnvDurationOrDefault("AUTH_CODE_TTL", 10*time.Minute),
		AccessTokenTTL:       getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:      getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_TTL", 30*24*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.LoginURL == "" {
		cfg.LoginURL = cfg.BaseURL + "/login"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
