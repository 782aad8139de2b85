// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and FLIGHTML_* env vars over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Model URIs of the two trained models the service ships with.
const (
	DefaultSatisfactionModelURI = "runs:/90e43c8d4ded4b88bff19588c7e9225c/random_forest_model"
	DefaultPriceModelURI        = "runs:/752c02cb9c1041cd8eb909540372da3b/Gradient Boosting Regressor Tuning"
)

const maxHistogramBins = 200

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, also writes logs to a rotating file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelsRoot is the directory runs:/ and models:/ URIs resolve under.
	ModelsRoot string `koanf:"models_root"`

	SatisfactionModelURI string `koanf:"satisfaction_model_uri"`
	PriceModelURI        string `koanf:"price_model_uri"`

	// ModelCacheSize bounds the number of decoded models kept in memory.
	ModelCacheSize int `koanf:"model_cache_size"`

	// QueueSize bounds the in-memory prediction event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of workers recording predictions.
	WorkerCount int `koanf:"worker_count"`

	// HistorySize bounds the in-memory prediction history.
	HistorySize int `koanf:"history_size"`

	// MaxHistoryLimit caps GET /predictions?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// PostgresDSN switches prediction history to Postgres when set.
	PostgresDSN string `koanf:"postgres_dsn"`

	// Redis prediction cache; disabled when RedisAddr is empty.
	RedisAddr                 string `koanf:"redis_addr"`
	RedisPassword             string `koanf:"redis_password"`
	RedisDB                   int    `koanf:"redis_db"`
	PredictionCacheTTLSeconds int    `koanf:"prediction_cache_ttl_seconds"`

	// KafkaBrokers is a comma separated broker list; publishing is off when empty.
	KafkaBrokers string `koanf:"kafka_brokers"`
	KafkaTopic   string `koanf:"kafka_topic"`

	// PriceDatasetPath is the historical price CSV behind the distribution chart.
	PriceDatasetPath   string `koanf:"price_dataset_path"`
	PriceHistogramBins int    `koanf:"price_histogram_bins"`

	// Currency is the ISO 4217 code price predictions are reported in.
	Currency string `koanf:"currency"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		Addr:                      ":8080",
		ModelsRoot:                "mlruns",
		SatisfactionModelURI:      DefaultSatisfactionModelURI,
		PriceModelURI:             DefaultPriceModelURI,
		ModelCacheSize:            8,
		QueueSize:                 10_000,
		WorkerCount:               runtime.NumCPU(),
		HistorySize:               1_000,
		MaxHistoryLimit:           100,
		PredictionCacheTTLSeconds: 300,
		KafkaTopic:                "flight-predictions",
		PriceDatasetPath:          "data/cleaned_flight_price.csv",
		PriceHistogramBins:        30,
		Currency:                  "INR",
	}
}

// Brokers splits KafkaBrokers into addresses, dropping blanks.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// PredictionCacheTTL returns the prediction cache TTL as a duration.
func (c *Config) PredictionCacheTTL() time.Duration {
	return time.Duration(c.PredictionCacheTTLSeconds) * time.Second
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SatisfactionModelURI) == "":
		return fmt.Errorf("%w: satisfaction_model_uri must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.PriceModelURI) == "":
		return fmt.Errorf("%w: price_model_uri must not be empty", ErrInvalidConfig)
	case c.ModelCacheSize <= 0:
		return fmt.Errorf("%w: model_cache_size must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history_size must be positive", ErrInvalidConfig)
	case c.MaxHistoryLimit <= 0:
		return fmt.Errorf("%w: max_history_limit must be positive", ErrInvalidConfig)
	case c.PredictionCacheTTLSeconds < 0:
		return fmt.Errorf("%w: prediction_cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.PriceHistogramBins < 1 || c.PriceHistogramBins > maxHistogramBins:
		return fmt.Errorf("%w: price_histogram_bins must be in [1, %d]", ErrInvalidConfig, maxHistogramBins)
	case len(c.Brokers()) > 0 && strings.TrimSpace(c.KafkaTopic) == "":
		return fmt.Errorf("%w: kafka_topic must be set with kafka_brokers", ErrInvalidConfig)
	case len(strings.TrimSpace(c.Currency)) != 3:
		return fmt.Errorf("%w: currency must be an ISO 4217 code", ErrInvalidConfig)
	}
	return nil
}
