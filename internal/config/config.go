package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	AuthJWTSecret    string
	XAIAPIKey        string
	AIModel          string
	AIBaseURL        string
	AITimeoutSeconds int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:vocaflash.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		AuthJWTSecret:    envOr("AUTH_JWT_SECRET", ""),
		XAIAPIKey:        envOr("XAI_API_KEY", ""),
		AIModel:          envOr("AI_MODEL", "grok-4-1-fast-reasoning"),
		AIBaseURL:        envOr("AI_BASE_URL", "https://api.x.ai/v1"),
		AITimeoutSeconds: envIntOr("AI_TIMEOUT_SECONDS", 60),
	}
}

// Validate checks that the configuration is usable.
func (cfg Config) Validate() error {
	if cfg.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if cfg.AITimeoutSeconds <= 0 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
