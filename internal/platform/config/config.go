package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// defaultAlertThreshold is the record value above which alerts are emitted,
// used when ALERT_THRESHOLD is unset or unparseable.
const defaultAlertThreshold = "1000.00"

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// AlertThreshold is the value above which the alert consumer emits.
	AlertThreshold decimal.Decimal

	// KafkaBrokers enables the Kafka event relay when non-empty.
	KafkaBrokers      []string
	RecordStoredTopic string

	// RateLimit is in ulule/limiter formatted notation, e.g. "300-M".
	// Empty disables rate limiting.
	RateLimit string

	// EventBufferSize is the pending capacity of the in-process event
	// dispatcher.
	EventBufferSize int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ALERT_THRESHOLD", defaultAlertThreshold)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("RECORD_STORED_TOPIC", "record_stored")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("EVENT_BUFFER_SIZE", 64)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	thresholdStr := viper.GetString("ALERT_THRESHOLD")
	threshold, err := decimal.NewFromString(thresholdStr)
	if err != nil || threshold.LessThanOrEqual(decimal.Zero) {
		log.Printf("Warning: Invalid value for ALERT_THRESHOLD ('%s'). Defaulting to %s.\n", thresholdStr, defaultAlertThreshold)
		threshold, _ = decimal.NewFromString(defaultAlertThreshold)
	}
	cfg.AlertThreshold = threshold

	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.RecordStoredTopic = viper.GetString("RECORD_STORED_TOPIC")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.EventBufferSize = viper.GetInt("EVENT_BUFFER_SIZE")
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = 64
	}

	return cfg, nil
}
