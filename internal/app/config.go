package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"barangay-payroll/internal/shared/connection"
)

// Config is read from the environment; cmd mains load .env first.
type Config struct {
	Env      string
	Port     string
	DB       connection.DBConfig
	Redis    string
	Kafka    string
	JWT      []byte
	RBACPath string

	// Timezone places "now" and deduction dates on the barangay's calendar.
	Timezone *time.Location

	OutboxPollInterval time.Duration
	ConsumerGroup      string
	AutoMigrate        bool
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Env:  getenv("APP_ENV", "development"),
		Port: getenv("PORT", "3000"),
		DB: connection.DBConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getenv("DB_PORT", "5432"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
			TimeZone: "UTC",
		},
		Redis:         os.Getenv("REDIS_ADDR"),
		Kafka:         os.Getenv("KAFKA_BROKER"),
		JWT:           []byte(os.Getenv("JWT_SECRET")),
		RBACPath:      os.Getenv("RBAC_MODEL_PATH"),
		ConsumerGroup: getenv("KAFKA_CONSUMER_GROUP", "barangay-payroll-release-followup"),
	}

	tz := getenv("PAYROLL_TIMEZONE", "Asia/Manila")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid PAYROLL_TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	cfg.OutboxPollInterval, err = time.ParseDuration(getenv("OUTBOX_POLL_INTERVAL", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OUTBOX_POLL_INTERVAL: %w", err)
	}

	cfg.AutoMigrate, err = strconv.ParseBool(getenv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	return cfg, nil
}

// RequireHTTP checks what the API process cannot start without.
func (c Config) RequireHTTP() error {
	if len(c.JWT) == 0 {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func (c Config) RequireKafka() error {
	if c.Kafka == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
