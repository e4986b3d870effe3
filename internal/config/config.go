package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds all runtime configuration for the portfolio service.
type Config struct {
	Port               int
	LogLevel           string
	LogPretty          bool
	StorageDriver      string
	SQLitePath         string
	QuoteBaseURL       string
	QuoteAPIKey        string
	QuoteTimeout       time.Duration
	CacheTTL           time.Duration
	CacheSweepSchedule string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. A .env file in the working directory is loaded
// first if present; variables already set in the environment win. It
// returns an error for any invalid value.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	logPretty, err := getBool("LOG_PRETTY", false)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}

	storageDriver := getStr("STORAGE_DRIVER", StorageMemory)
	if storageDriver != StorageMemory && storageDriver != StorageSQLite {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %q, must be one of: memory, sqlite", storageDriver)
	}

	quoteTimeout, err := getPositiveDuration("QUOTE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TIMEOUT: %w", err)
	}

	cacheTTL, err := getPositiveDuration("CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	sweepSchedule := getStr("CACHE_SWEEP_SCHEDULE", "@every 20m")
	if _, err := cron.ParseStandard(sweepSchedule); err != nil {
		return nil, fmt.Errorf("invalid CACHE_SWEEP_SCHEDULE: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:               port,
		LogLevel:           logLevel,
		LogPretty:          logPretty,
		StorageDriver:      storageDriver,
		SQLitePath:         getStr("SQLITE_PATH", "./data/carteira.db"),
		QuoteBaseURL:       getStr("QUOTE_BASE_URL", "https://brapi.dev/api"),
		QuoteAPIKey:        getStr("QUOTE_API_KEY", ""),
		QuoteTimeout:       quoteTimeout,
		CacheTTL:           cacheTTL,
		CacheSweepSchedule: sweepSchedule,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		ShutdownTimeout:    shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func getPositiveDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
