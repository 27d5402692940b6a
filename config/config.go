package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"birthdaybot/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken        string
	DiscordClientID     string
	DiscordClientSecret string
	RedirectURI         string // OAuth2 callback for the dashboard

	// Database configuration
	DatabaseURL             string
	DatabaseName            string
	DatabaseMinConns        int32
	DatabaseMaxConns        int32
	DatabaseConnectAttempts int
	DatabaseConnectDelay    time.Duration

	// Scheduling
	Timezone  string    // Reference timezone used to decide "today" for every guild
	CheckTime TimeOfDay // Wall-clock time of the daily birthday check

	// NATS configuration (empty disables event publishing)
	NATSServers string

	// Dashboard configuration
	DashboardAddr string
	RedisURL      string

	LogLevel    string
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// PoolOptions returns the bounds of the shared connection pool
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MinConns: c.DatabaseMinConns,
		MaxConns: c.DatabaseMaxConns,
	}
}

// Location loads the reference timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DashboardEnabled reports whether the OAuth credentials needed by the dashboard are set
func (c *Config) DashboardEnabled() bool {
	return c.DiscordClientID != "" && c.DiscordClientSecret != "" && c.RedirectURI != ""
}

// load loads configuration from environment variables, reading .env first when present
func load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded environment from .env file")
	}

	config := &Config{
		DiscordToken:        os.Getenv("DISCORD_TOKEN"),
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		RedirectURI:         os.Getenv("REDIRECT_URI"),

		DatabaseURL:             os.Getenv("DATABASE_URL"),
		DatabaseName:            os.Getenv("DATABASE_NAME"),
		DatabaseMinConns:        int32(getEnvInt("DATABASE_MIN_CONNS", 1)),
		DatabaseMaxConns:        int32(getEnvInt("DATABASE_MAX_CONNS", 10)),
		DatabaseConnectAttempts: getEnvInt("DATABASE_CONNECT_ATTEMPTS", 10),
		DatabaseConnectDelay:    3 * time.Second,

		Timezone:  getEnvWithDefault("TIMEZONE", "Europe/Paris"),
		CheckTime: TimeOfDay{Hour: 0, Minute: 0},

		NATSServers: os.Getenv("NATS_SERVERS"),

		DashboardAddr: getEnvWithDefault("DASHBOARD_ADDR", ":5000"),
		RedisURL:      getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if raw := os.Getenv("CHECK_TIME"); raw != "" {
		checkTime, err := ParseTimeOfDay(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHECK_TIME: %w", err)
		}
		config.CheckTime = checkTime
	}

	if _, err := time.LoadLocation(config.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", config.Timezone, err)
	}

	if config.DatabaseMaxConns < 1 {
		return nil, fmt.Errorf("DATABASE_MAX_CONNS must be positive")
	}
	if config.DatabaseMinConns > config.DatabaseMaxConns {
		return nil, fmt.Errorf("DATABASE_MIN_CONNS cannot exceed DATABASE_MAX_CONNS")
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("Ignoring invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:            "test-token",
		DatabaseMinConns:        1,
		DatabaseMaxConns:        10,
		DatabaseConnectAttempts: 1,
		DatabaseConnectDelay:    10 * time.Millisecond,
		Timezone:                "Europe/Paris",
		CheckTime:               TimeOfDay{},
		DashboardAddr:           ":5000",
		LogLevel:                "debug",
		Environment:             "test",
	}
}
