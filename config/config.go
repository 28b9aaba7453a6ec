package config

import (
	"os"
	"strconv"
	"time"
)

// Config struct holds application configuration
// This is a simple way to make config accessible globally.
// A more advanced approach might use dependency injection.
type Config struct {
	DatabaseURL     string
	Port            string
	GeminiAPIKey    string
	ProviderTimeout time.Duration
	ProviderRetries int
}

// AppConfig holds the application-wide configuration
var AppConfig Config

// Load reads configuration from environment variables, applying
// defaults for the optional knobs.
func Load() {
	AppConfig = Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            getEnv("PORT", "3000"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		ProviderTimeout: getDurationEnv("PROVIDER_TIMEOUT", 5*time.Second),
		ProviderRetries: getIntEnv("PROVIDER_RETRIES", 3),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
