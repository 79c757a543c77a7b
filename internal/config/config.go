// Package config loads the service settings from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/joho/godotenv"
	"github.com/rocjay1/chanchito/internal/services"
)

// Store drivers.
const (
	StoreTables = "tables"
	StoreSQLite = "sqlite"
)

const defaultTimezone = "America/Argentina/Buenos_Aires"

// Config holds the service settings.
type Config struct {
	Port     string
	LogLevel string

	StoreDriver     string
	TableServiceURL string
	TableNames      services.TableNames
	SQLitePath      string

	BlobServiceURL  string
	QueueServiceURL string
	UploadContainer string
	JobQueue        string

	CommunicationServicesEndpoint string
	SenderEmail                   string
	UserEmail                     string

	DefaultUserID string
	Timezone      string
	Location      *time.Location

	PriceTimeout      time.Duration
	PriceBatchSize    int
	FXCacheTTL        time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
	ReminderDaysAhead int
}

// Load reads the configuration. Malformed numbers and durations fall back to
// their defaults with a warning; an unknown store driver or time zone is an
// error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load .env file", "error", err)
		}
	}

	cfg := &Config{
		Port:     getEnv("FUNCTIONS_CUSTOMHANDLER_PORT", getEnv("PORT", "8080")),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", StoreTables)),
		TableServiceURL: os.Getenv("TABLE_SERVICE_URL"),
		TableNames: services.TableNames{
			Transactions:   os.Getenv("TRANSACTIONS_TABLE"),
			Installments:   os.Getenv("INSTALLMENTS_TABLE"),
			Subscriptions:  os.Getenv("SUBSCRIPTIONS_TABLE"),
			PaymentMethods: os.Getenv("PAYMENT_METHODS_TABLE"),
			Investments:    os.Getenv("INVESTMENTS_TABLE"),
			MarketPrices:   os.Getenv("MARKET_PRICES_TABLE"),
			Savings:        os.Getenv("SAVINGS_TABLE"),
		},
		SQLitePath: getEnv("SQLITE_PATH", "chanchito.db"),

		BlobServiceURL:  os.Getenv("BLOB_SERVICE_URL"),
		QueueServiceURL: os.Getenv("QUEUE_SERVICE_URL"),
		UploadContainer: getEnv("UPLOAD_CONTAINER", "uploads"),
		JobQueue:        getEnv("JOB_QUEUE", "process-queue"),

		CommunicationServicesEndpoint: os.Getenv("COMMUNICATION_SERVICES_ENDPOINT"),
		SenderEmail:                   os.Getenv("SENDER_EMAIL"),
		UserEmail:                     os.Getenv("USER_EMAIL"),

		DefaultUserID: os.Getenv("DEFAULT_USER_ID"),
		Timezone:      getEnv("TIMEZONE", defaultTimezone),

		PriceTimeout:      getEnvDuration("PRICE_TIMEOUT", 10*time.Second),
		PriceBatchSize:    getEnvInt("PRICE_BATCH_SIZE", 5),
		FXCacheTTL:        getEnvDuration("FX_CACHE_TTL", 15*time.Minute),
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 30),
		ReminderDaysAhead: getEnvInt("REMINDER_DAYS_AHEAD", 3),
	}

	switch cfg.StoreDriver {
	case StoreTables, StoreSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q, want %q or %q", cfg.StoreDriver, StoreTables, StoreSQLite)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer setting, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid number setting, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration setting, using default", "key", key, "value", raw, "default", fallback.String())
		return fallback
	}
	return v
}
