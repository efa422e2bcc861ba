// Package config loads the server configuration from the environment, with
// optional .env support.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	// HTTP server
	Port string

	// Storage
	Backend string // "sqlite" or "memory"
	DBPath  string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // "text" (tint) or "json"

	// Currency rates
	RatesURL string
	RatesTTL time.Duration

	// To-do housekeeping
	SweepInterval time.Duration

	// Optional API protection. When AccessPassword is empty the API is open.
	AccessPassword string
	JWTSecret      string
	TokenTTL       time.Duration

	// loadProblems collects values that failed to parse during Load, so
	// Validate can report them instead of silently running on fallbacks.
	loadProblems []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() *Config {
	_ = godotenv.Load()

	var problems []string
	return &Config{
		Port:    getEnv("PORT", "8080"),
		Backend: getEnv("STORAGE_BACKEND", "sqlite"),
		DBPath:  getEnv("DB_PATH", "./data/helpers.db"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RatesURL: getEnv("RATES_URL", ""),
		RatesTTL: getEnvDuration("RATES_TTL", 24*time.Hour, &problems),

		SweepInterval: getEnvDuration("TODO_SWEEP_INTERVAL", time.Hour, &problems),

		AccessPassword: getEnv("ACCESS_PASSWORD", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 24*time.Hour, &problems),

		loadProblems: problems,
	}
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.loadProblems...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "sqlite":
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH cannot be empty with the sqlite backend")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be sqlite or memory", c.Backend))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be text or json", c.LogFormat))
	}

	if c.AccessPassword != "" && c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required when ACCESS_PASSWORD is set")
	}
	if c.RatesTTL <= 0 {
		problems = append(problems, "RATES_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		problems = append(problems, "TODO_SWEEP_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration, problems *[]string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("invalid %s %q: must be a duration like 24h or 30m", key, value))
		return fallback
	}
	return d
}
