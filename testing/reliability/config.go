package reliability

import (
	"os"
	"strconv"
	"time"
)

// Config controls how hard the reliability tests push the collectors.
type Config struct {
	Level         string        // "basic" or "stress"
	Duration      time.Duration // Length of sustained-load runs
	MaxGoroutines int           // Upper bound on concurrent workers
	Names         int           // Distinct transaction names in play
}

// loadConfig reads configuration from environment variables.
func loadConfig() Config {
	return Config{
		Level:         getEnv("TXTIMEZ_RELIABILITY_LEVEL", ""),
		Duration:      parseDuration(getEnv("TXTIMEZ_RELIABILITY_DURATION", "5s")),
		MaxGoroutines: parseInt(getEnv("TXTIMEZ_RELIABILITY_MAX_GOROUTINES", "64"), 64),
		Names:         parseInt(getEnv("TXTIMEZ_RELIABILITY_NAMES", "32"), 32),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, fallback int) int {
	if value, err := strconv.Atoi(s); err == nil && value > 0 {
		return value
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return 5 * time.Second
}
