package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultLocalStorePath is used when LOCAL_STORE_PATH is unset.
const DefaultLocalStorePath = "data"

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string
	// LogFormat is "json" or "text".
	LogFormat string

	// DatabaseURL points at the remote bookings table. Empty means the
	// service runs in local mode for the whole session.
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	// LocalStoreKey is the single key the local fallback blob lives under.
	LocalStoreKey string
	// LocalStorePath is the directory the local fallback is written to when
	// Redis is not configured.
	LocalStorePath string

	AdminPassword   string
	AdminJWTSecret  string
	AdminSessionTTL time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	ClinicTimezone  string
	SlotGracePeriod time.Duration
	SeedDemoBooking bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", "json"))),

		DatabaseURL:    strings.TrimSpace(getEnv("DATABASE_URL", "")),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		LocalStoreKey:  getEnv("LOCAL_STORE_KEY", "bk_bookings"),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", DefaultLocalStorePath),

		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),
		AdminSessionTTL: getEnvAsDuration("ADMIN_SESSION_TTL", 8*time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		ClinicTimezone:  getEnv("CLINIC_TIMEZONE", ""),
		SlotGracePeriod: getEnvAsDuration("SLOT_GRACE_PERIOD", 10*time.Minute),
		SeedDemoBooking: getEnvAsBool("SEED_DEMO_BOOKING", false),
	}
}

// RemoteConfigured reports whether credentials for the remote store exist.
// Reachability is checked separately at startup.
func (c *Config) RemoteConfigured() bool {
	return c != nil && c.DatabaseURL != ""
}

// Location resolves ClinicTimezone, defaulting to UTC.
func (c *Config) Location() *time.Location {
	loc, _ := c.LoadLocation()
	return loc
}

// LoadLocation is Location with the lookup error. An unknown zone still
// returns UTC so callers can log and carry on.
func (c *Config) LoadLocation() (*time.Location, error) {
	if c == nil || strings.TrimSpace(c.ClinicTimezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(c.ClinicTimezone))
	if err != nil {
		return time.UTC, fmt.Errorf("config: CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	return loc, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
