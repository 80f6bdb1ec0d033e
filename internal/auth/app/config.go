package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret aborts startup: without the secret the service would
// mint tokens nothing can verify after a restart.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET must be set")

type Config struct {
	JWTSecret string // Required: HS256 signing secret for access tokens
	Issuer    string // Issuer claim for tokens (default: clicktales-auth)

	DatabaseFile string // Path to SQLite database file (default: ./clicktales.db)
	PepperFile   string // Path to the password-hash pepper file (default: ./pepper)

	ResendAPIKey string // Optional: Resend API key; codes are logged when empty
	EmailFrom    string // Sender address for OTP email

	AccessTTL  time.Duration // Access token lifetime (default: 24h)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)
	OTPTTL     time.Duration // One-time code lifetime (default: 10m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	UnverifiedTTL        time.Duration // Purge unverified accounts after this (default: 0, disabled)
}

func LoadConfig() (Config, error) {
	// A local .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg := Config{
		JWTSecret:            os.Getenv("AUTH_JWT_SECRET"),
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "clicktales-auth"),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "clicktales.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		EmailFrom:            getEnvOrDefault("EMAIL_FROM", "ClickTales <no-reply@clicktales.local>"),
		AccessTTL:            getEnvDurationOrDefault("AUTH_ACCESS_TTL", 24*time.Hour),
		RefreshTTL:           getEnvDurationOrDefault("AUTH_REFRESH_TTL", 7*24*time.Hour),
		OTPTTL:               getEnvDurationOrDefault("AUTH_OTP_TTL", 10*time.Minute),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		UnverifiedTTL:        getEnvDurationOrDefault("AUTH_UNVERIFIED_TTL", 0),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
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

	// Integer minutes, for compatibility with older deployments.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
