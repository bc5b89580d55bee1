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
	LogLevel    string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	BaseURL     string
	FrontendURL string

	// Turn policy
	TurnTimeoutSeconds      int
	CourtesyCooldownSeconds int
	ExpiryPollSeconds       int

	// Gacha
	GachaMinutesPerPull int

	// Live updates
	EventBus string
	NATSURL  string

	// Roster
	ArcadeFile string
	Arcade     *Arcade

	// Security
	JWTSecret             string
	SessionTTLHours       int
	AdminUsername         string
	LoginRateLimitSeconds int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	port := getEnv("APP_PORT", "8080")

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/arcadeline?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        port,
		BaseURL:     getEnv("BASE_URL", defaultBaseURL(port)),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Turn policy
		TurnTimeoutSeconds:      getEnvInt("TURN_TIMEOUT_SECONDS", 60),
		CourtesyCooldownSeconds: getEnvInt("COURTESY_COOLDOWN_SECONDS", 10),
		ExpiryPollSeconds:       getEnvInt("EXPIRY_POLL_SECONDS", 2),

		// Gacha
		GachaMinutesPerPull: getEnvInt("GACHA_MINUTES_PER_PULL", 30),

		// Live updates
		EventBus: strings.ToLower(getEnv("EVENT_BUS", "redis")),
		NATSURL:  getEnv("NATS_URL", "nats://127.0.0.1:4222"),

		// Roster
		ArcadeFile: getEnv("ARCADE_FILE", "arcade.yaml"),

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTTLHours:       getEnvInt("SESSION_TTL_HOURS", 24*30),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		LoginRateLimitSeconds: getEnvInt("LOGIN_RATE_LIMIT_SECONDS", 2),
	}
}

// TurnTimeout is the accept window for a pending turn.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

// CourtesyCooldown is how long a player who emptied a game waits to rejoin it.
func (c *Config) CourtesyCooldown() time.Duration {
	return time.Duration(c.CourtesyCooldownSeconds) * time.Second
}

func (c *Config) ExpiryPollInterval() time.Duration {
	return time.Duration(c.ExpiryPollSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func defaultBaseURL(port string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "http://" + host + ":" + port
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
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
