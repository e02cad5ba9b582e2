package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Remote store platform
	StoreAPIBase string // printf template, %s = store ID

	// Migration tuning
	PageSize      int
	MaxPages      int
	SlugRetries   int
	RateLimitMax  int
	RateLimitBase int // milliseconds

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://migrator.db"),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:       getEnv("API_PORT", "8080"),
		APIHost:       getEnv("API_HOST", "0.0.0.0"),
		StoreAPIBase:  getEnv("STORE_API_BASE", "https://api.storeplatform.com/stores/%s"),
		PageSize:      getEnvAsInt("CATALOG_PAGE_SIZE", 100),
		MaxPages:      getEnvAsInt("CATALOG_MAX_PAGES", 200),
		SlugRetries:   getEnvAsInt("SLUG_COLLISION_RETRIES", 8),
		RateLimitMax:  getEnvAsInt("RATE_LIMIT_MAX_RETRIES", 3),
		RateLimitBase: getEnvAsInt("RATE_LIMIT_BASE_MS", 250),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
