package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Base64-encoded bcrypt hash of the admin password.
	AdminHashEncoded string

	// Room capacity limits, enforced separately per kind.
	RoomPublicLimit  int
	RoomPrivateLimit int

	// Sweeper schedule: how often each kind of room is checked and how long
	// a room may sit without activity before it is evicted.
	CheckPublicRoomsInterval  time.Duration
	CheckPrivateRoomsInterval time.Duration
	PublicRoomLifetime        time.Duration
	PrivateRoomLifetime       time.Duration

	// Websocket read limits.
	WSMessageLimit int64
	WSRateBurst    int
	WSRateRefill   time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "3000"),
		Env:              getEnv("ENV", "development"),
		AdminHashEncoded: os.Getenv("ADMIN_HASH_ENCODED"),

		RoomPublicLimit:  getEnvInt("ROOM_PUBLIC_LIMIT", 10),
		RoomPrivateLimit: getEnvInt("ROOM_PRIVATE_LIMIT", 10),

		CheckPublicRoomsInterval:  getEnvDuration("CHECK_PUBLIC_ROOMS_INTERVAL", 5*time.Minute),
		CheckPrivateRoomsInterval: getEnvDuration("CHECK_PRIVATE_ROOMS_INTERVAL", 5*time.Minute),
		PublicRoomLifetime:        getEnvDuration("PUBLIC_ROOM_LIFETIME", time.Hour),
		PrivateRoomLifetime:       getEnvDuration("PRIVATE_ROOM_LIFETIME", 2*time.Hour),

		WSMessageLimit: int64(getEnvInt("WS_MESSAGE_LIMIT", 16*1024)),
		WSRateBurst:    getEnvInt("WS_RATE_BURST", 20),
		WSRateRefill:   getEnvDuration("WS_RATE_REFILL", time.Second),
	}

	if cfg.Env == "production" && cfg.AdminHashEncoded == "" {
		panic("ADMIN_HASH_ENCODED is required in production")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "1h") and, for
// compatibility with the Node deployment's env files, bare integers
// interpreted as milliseconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
