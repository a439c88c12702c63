package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	// Sealing. PreviousSigningSecret is set only during a key rotation window.
	SigningSecret         string
	PreviousSigningSecret string

	// Ledger + risk-state database.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// External collaborators.
	ForecastAPIURL   string
	ForecastAPIKey   string
	StripeAPIKey     string
	TelegramBotToken string
	TelegramChatID   int64

	HistoryLimit   int
	RequestTimeout int // seconds
	LogLevel       string
}

// Load initializes configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		SigningSecret:         os.Getenv("LEDGER_SIGNING_SECRET"),
		PreviousSigningSecret: os.Getenv("LEDGER_PREVIOUS_SIGNING_SECRET"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		ForecastAPIURL:   os.Getenv("FORECAST_API_URL"),
		ForecastAPIKey:   os.Getenv("FORECAST_API_KEY"),
		StripeAPIKey:     os.Getenv("STRIPE_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),

		HistoryLimit:   getEnvIntWithDefault("HISTORY_LIMIT", 50),
		RequestTimeout: getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
