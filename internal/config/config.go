package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/clothify/shop-api/internal/pricing"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Log     LogConfig
	Pricing PricingConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"shop_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// PricingConfig holds the cart pricing policy. Amounts are whole currency
// units (VND has no minor unit). Defaults match the storefront: a flat
// 30,000 shipping fee waived from 500,000 up, and no VAT.
type PricingConfig struct {
	ShippingFee           int64   `envconfig:"PRICING_SHIPPING_FEE" default:"30000"`
	FreeShippingThreshold int64   `envconfig:"PRICING_FREE_SHIPPING_THRESHOLD" default:"500000"`
	TaxRatePercent        float64 `envconfig:"PRICING_TAX_RATE_PERCENT" default:"0"`
}

// Policy converts the configured amounts into a pricing.Policy.
func (c PricingConfig) Policy() pricing.Policy {
	return pricing.Policy{
		ShippingFee:           decimal.NewFromInt(c.ShippingFee),
		FreeShippingThreshold: decimal.NewFromInt(c.FreeShippingThreshold),
		TaxRatePercent:        decimal.NewFromFloat(c.TaxRatePercent),
	}
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
