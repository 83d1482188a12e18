package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"tokenrisk/pkg/contracts/domain"
)

// ErrMissingAPIKey is returned by ValidateForBatch when no API key is configured
var ErrMissingAPIKey = errors.New("market data API key is not configured (set OLRS_API_KEY)")

// Config represents the complete application configuration
type Config struct {
	API       APIConfig          `yaml:"api" envconfig:"API"`
	Batch     BatchConfig        `yaml:"batch" envconfig:"BATCH"`
	Logging   LoggingConfig      `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig    `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server    ServerConfig       `yaml:"server" envconfig:"SERVER"`
	Tokens    TokenTable         `yaml:"tokens" envconfig:"TOKENS"`
	Items     []domain.BatchItem `yaml:"items" ignored:"true" validate:"dive"`
}

// APIConfig contains market data API configuration
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	Key          string        `yaml:"key" envconfig:"KEY"`
	Interval     string        `yaml:"interval" envconfig:"INTERVAL" validate:"required,oneof=3m 5m 15m 30m 1h 2h 4h 12h 1d 3d 1w 1M"`
	NumIntervals int           `yaml:"num_intervals" envconfig:"NUM_INTERVALS" validate:"min=1"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	RateLimitRPS float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gte=0"`
}

// BatchConfig contains batch driver configuration
type BatchConfig struct {
	Workers     int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=16"`
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	SummaryFile string `yaml:"summary_file" envconfig:"SUMMARY_FILE"` // .json or .csv, empty disables
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig contains metrics and tracing configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
}

// ServerConfig contains scoring API server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains inbound rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// Load builds the configuration from defaults, the optional YAML file and
// OLRS_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Tokens = c.Tokens.normalized()
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.API.Key = strings.TrimSpace(c.API.Key)
	for i := range c.Items {
		c.Items[i].Symbol = strings.ToUpper(strings.TrimSpace(c.Items[i].Symbol))
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return nil
}

// ValidateForBatch checks what the batch driver needs beyond Validate:
// an API key and a resolvable unit for every configured item.
func (c *Config) ValidateForBatch() error {
	if c.API.Key == "" {
		return ErrMissingAPIKey
	}
	if len(c.Items) == 0 {
		return errors.New("no batch items configured")
	}
	var errs []error
	for _, item := range c.Items {
		if _, err := c.Tokens.Lookup(item.Symbol); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvConfigKey); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	items := make([]domain.BatchItem, 0, len(DefaultSymbols))
	for _, symbol := range DefaultSymbols {
		items = append(items, domain.NewBatchItem(DefaultDataDir, symbol))
	}

	return &Config{
		API: APIConfig{
			BaseURL:      DefaultAPIBaseURL,
			Interval:     DefaultInterval,
			NumIntervals: DefaultNumIntervals,
			Timeout:      DefaultAPITimeout,
			RateLimitRPS: DefaultRateLimitRPS,
		},
		Batch: BatchConfig{
			Workers: DefaultWorkers,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "olrs",
			TraceExporter: "none",
		},
		Server: ServerConfig{
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Tokens: defaultTokenTable(),
		Items:  items,
	}
}
