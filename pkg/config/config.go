package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// SettlementTimezone is the IANA zone the weekly period is resolved in.
	SettlementTimezone string
	// RunRateLimit throttles the batch trigger endpoint, in ulule/limiter
	// format (e.g. "10-M" for ten requests per minute).
	RunRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("SETTLEMENT_TIMEZONE", "America/Los_Angeles")
	viper.SetDefault("RUN_RATE_LIMIT", "10-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.SettlementTimezone = viper.GetString("SETTLEMENT_TIMEZONE")
	if _, err := time.LoadLocation(cfg.SettlementTimezone); err != nil {
		log.Printf("Warning: Invalid value for SETTLEMENT_TIMEZONE ('%s'). Defaulting to America/Los_Angeles.\n", cfg.SettlementTimezone)
		cfg.SettlementTimezone = "America/Los_Angeles"
	}

	cfg.RunRateLimit = viper.GetString("RUN_RATE_LIMIT")

	return cfg, nil
}
