package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all server settings, populated from environment variables.
type Config struct {
	Port       string
	DBPath     string
	JWTSecret  string
	TokenTTL   time.Duration
	LogLevel   string
	LogFormat  string
	RateLimit  int
	RateWindow time.Duration
	TestRoutes bool
}

// Load reads configuration from the environment, applying defaults for
// anything unset. The JWT secret has a development default; deployments are
// expected to override it.
func Load() Config {
	cfg := Config{
		Port:       getenv("LISTKEEP_PORT", "8080"),
		DBPath:     getenv("LISTKEEP_DB_PATH", "listkeep.db"),
		JWTSecret:  getenv("LISTKEEP_JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:   getduration("LISTKEEP_TOKEN_TTL", 30*24*time.Hour),
		LogLevel:   getenv("LISTKEEP_LOG_LEVEL", "info"),
		LogFormat:  getenv("LISTKEEP_LOG_FORMAT", "text"),
		RateLimit:  getint("LISTKEEP_RATE_LIMIT", 10),
		RateWindow: getduration("LISTKEEP_RATE_WINDOW", time.Minute),
		TestRoutes: getbool("LISTKEEP_TEST_ROUTES", true),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
