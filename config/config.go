package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the positions monitor.
type Config struct {
	// Environment selects between development and production behavior
	// (currently only affects startup validation strictness).
	Environment string

	Monitor MonitorConfig
	Metrics MetricsConfig
}

// MonitorConfig parametrizes the positions monitor and wallet aggregator.
type MonitorConfig struct {
	// Capacity is a sizing hint for the positions cache. It is not a hard
	// limit.
	Capacity int

	// CancelTopUpDelay is how long an applied top-up must have aged before
	// the monitor may cancel it on its own.
	CancelTopUpDelay time.Duration

	// CancelTopUpPriceChangePercent is the favorable price move, relative to
	// the activate price, past which aged applied top-ups are cancelled and
	// unwound.
	CancelTopUpPriceChangePercent float64

	// PnLAccuracy is the decimal precision closed positions round their
	// pnl figures to. A nil-equivalent (negative) value disables rounding.
	PnLAccuracy int

	// WalletMonitoringEnabled toggles the cross-margin wallet aggregator.
	// When false the monitor still tracks positions individually but skips
	// wallet-level margin-call aggregation.
	WalletMonitoringEnabled bool
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// Load reads configuration from the environment, optionally seeded by a
// .env file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		Monitor: MonitorConfig{
			Capacity:                      getEnvAsInt("MONITOR_CAPACITY", 4096),
			CancelTopUpDelay:              getEnvAsDuration("MONITOR_CANCEL_TOP_UP_DELAY", 10*time.Minute),
			CancelTopUpPriceChangePercent: getEnvAsFloat("MONITOR_CANCEL_TOP_UP_PRICE_CHANGE_PERCENT", 5.0),
			PnLAccuracy:                   getEnvAsInt("MONITOR_PNL_ACCURACY", 8),
			WalletMonitoringEnabled:       getEnvAsBool("MONITOR_WALLET_MONITORING_ENABLED", true),
		},

		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Addr:    getEnv("METRICS_ADDR", ":9090"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior later.
func (c *Config) Validate() error {
	if c.Monitor.Capacity <= 0 {
		return fmt.Errorf("MONITOR_CAPACITY must be positive, got %d", c.Monitor.Capacity)
	}
	if c.Monitor.CancelTopUpPriceChangePercent < 0 {
		return fmt.Errorf("MONITOR_CANCEL_TOP_UP_PRICE_CHANGE_PERCENT must not be negative")
	}
	if c.Environment == "production" && !c.Metrics.Enabled {
		log.Println("WARNING: metrics disabled in production environment")
	}
	return nil
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultVal
	}
	return value
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultVal
	}
	return value
}
