package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// NATS
	NATSURL string

	// Server
	Port        string
	FrontendURL string

	// Table settings
	TickMillis         int
	PocketPolicy       string
	TableIdleMinutes   int
	SnapshotTTLMinutes int

	// Security
	JWTSecret      string
	SeatTokenHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database (empty disables result storage)
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis (empty disables snapshots)
		RedisURL: getEnv("REDIS_URL", ""),

		// NATS (empty disables event fan-out)
		NATSURL: getEnv("NATS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Table settings
		TickMillis:         getEnvInt("TICK_MILLIS", 16),
		PocketPolicy:       getEnv("POOL_POCKET_POLICY", "first"),
		TableIdleMinutes:   getEnvInt("TABLE_IDLE_MINUTES", 30),
		SnapshotTTLMinutes: getEnvInt("SNAPSHOT_TTL_MINUTES", 60),

		// Security
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		SeatTokenHours: getEnvInt("SEAT_TOKEN_HOURS", 12),
	}
}

// TickInterval is the runner tick as a duration, never below one millisecond.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(max(c.TickMillis, 1)) * time.Millisecond
}

func (c *Config) TableIdleTimeout() time.Duration {
	return time.Duration(c.TableIdleMinutes) * time.Minute
}

func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLMinutes) * time.Minute
}

func (c *Config) SeatTokenTTL() time.Duration {
	return time.Duration(c.SeatTokenHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
