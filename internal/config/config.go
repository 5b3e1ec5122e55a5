package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores fulfillment service settings.
type Config struct {
	Port      int       `env:"PORT"`
	PprofPort int       `env:"PPROF_PORT"`
	PublicURL string    `env:"PUBLIC_URL"`
	DB        DB
	Kafka     Kafka
	Gateways  Gateways
	Warehouse Warehouse
	Delivery  Delivery
	RateLimit RateLimit
}

// DB stores database connection settings.
type DB struct {
	Host string `env:"DB_HOST"`
	Port string `env:"DB_PORT"`
	User string `env:"DB_USER"`
	Pass string `env:"DB_PASS"`
	Name string `env:"DB_NAME"`
}

// DSN builds a Postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores payment event consumer and status event producer settings.
// Empty brokers disable the Kafka paths entirely.
type Kafka struct {
	Brokers       []string `env:"KAFKA_BROKERS" envSeparator:","`
	PaymentTopic  string   `env:"KAFKA_PAYMENT_TOPIC"`
	StatusTopic   string   `env:"KAFKA_STATUS_TOPIC"`
	ConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP"`
}

// Gateway stores one outbound HTTP collaborator's settings.
type Gateway struct {
	BaseURL string
	Timeout time.Duration
}

// Gateways stores all outbound collaborator settings.
type Gateways struct {
	GeocoderURL      string        `env:"GEOCODER_URL"`
	GeocoderTimeout  time.Duration `env:"GEOCODER_TIMEOUT"`
	PaymentURL       string        `env:"PAYMENT_URL"`
	PaymentAPIKey    string        `env:"PAYMENT_API_KEY"`
	WebhookSecret    string        `env:"PAYMENT_WEBHOOK_SECRET"`
	PaymentTimeout   time.Duration `env:"PAYMENT_TIMEOUT"`
	OptimizerURL     string        `env:"OPTIMIZER_URL"`
	OptimizerTimeout time.Duration `env:"OPTIMIZER_TIMEOUT"`
	CatalogURL       string        `env:"CATALOG_URL"`
	CatalogTimeout   time.Duration `env:"CATALOG_TIMEOUT"`
	Retry            Retry
}

// Retry stores retrying-gateway behavior.
type Retry struct {
	MaxAttempts int           `env:"GATEWAY_RETRY_MAX_ATTEMPTS"`
	BaseDelay   time.Duration `env:"GATEWAY_RETRY_BASE_DELAY"`
	MaxDelay    time.Duration `env:"GATEWAY_RETRY_MAX_DELAY"`
}

// Warehouse stores the fixed shipping origin.
type Warehouse struct {
	Lat float64 `env:"WAREHOUSE_LAT"`
	Lng float64 `env:"WAREHOUSE_LNG"`
}

// Delivery stores assignment lifecycle settings.
type Delivery struct {
	PendingTTL      time.Duration `env:"DELIVERY_PENDING_TTL"`
	ReleaseInterval time.Duration `env:"DELIVERY_RELEASE_INTERVAL"`
}

// RateLimit stores per-client HTTP limiter settings.
type RateLimit struct {
	Rate  float64 `env:"RATE_LIMIT_RATE"`
	Burst int     `env:"RATE_LIMIT_BURST"`
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Defaults()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Gateways.Retry.MaxAttempts <= 0 {
		return nil, fmt.Errorf("invalid retry attempts: %d", cfg.Gateways.Retry.MaxAttempts)
	}
	return &cfg, nil
}
