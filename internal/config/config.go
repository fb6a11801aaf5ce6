package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"hargaemas/internal/emasnow"
	"hargaemas/internal/goemas"
	"hargaemas/internal/iloveemas"
	"hargaemas/internal/rajaemas"
)

// Config holds all configuration for the gold price aggregator.
type Config struct {
	// Source endpoints (configurable for testing)
	RajaEmasURL  string `mapstructure:"rajaemas_url" validate:"required,url"`
	ILoveEmasURL string `mapstructure:"iloveemas_url" validate:"required,url"`
	GoEmasURL    string `mapstructure:"goemas_url" validate:"required,url"`
	EmasNowURL   string `mapstructure:"emasnow_url" validate:"required,url"`

	// Outputs
	OutputPath string `mapstructure:"output_path" validate:"required"`
	ListenAddr string `mapstructure:"listen_addr" validate:"required,hostname_port|startswith=:"`
	Timezone   string `mapstructure:"timezone" validate:"required"`

	// Inbound budget for the server routes that trigger an aggregation,
	// zero disables throttling
	AggregationsPerMinute int `mapstructure:"aggregations_per_minute" validate:"gte=0"`
	AggregationBurst      int `mapstructure:"aggregation_burst" validate:"gte=1"`

	// Headless browser used by the rendered fetcher
	BrowserNoSandbox bool   `mapstructure:"browser_no_sandbox"`
	BrowserPath      string `mapstructure:"browser_path" validate:"omitempty,file"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Recognised environment variables:
//   - RAJAEMAS_URL, ILOVEEMAS_URL, GOEMAS_URL, EMASNOW_URL
//   - OUTPUT_PATH (default docs/index.html)
//   - LISTEN_ADDR (default :3000)
//   - TIMEZONE (default Asia/Makassar)
//   - AGGREGATIONS_PER_MINUTE (default 30), AGGREGATION_BURST (default 5)
//   - BROWSER_NO_SANDBOX, BROWSER_PATH
//   - LOG_LEVEL (debug, info, warn or error)
//   - CI (any non-empty value disables the browser sandbox)
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("rajaemas_url", rajaemas.DefaultURL)
	v.SetDefault("iloveemas_url", iloveemas.DefaultURL)
	v.SetDefault("goemas_url", goemas.DefaultURL)
	v.SetDefault("emasnow_url", emasnow.DefaultURL)
	v.SetDefault("output_path", "docs/index.html")
	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("timezone", "Asia/Makassar")
	v.SetDefault("aggregations_per_minute", 30)
	v.SetDefault("aggregation_burst", 5)
	v.SetDefault("browser_no_sandbox", false)
	v.SetDefault("browser_path", "")
	v.SetDefault("log_level", "info")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.hargaemas")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("CI") != "" {
		config.BrowserNoSandbox = true
	}
	config.LogLevel = strings.ToLower(config.LogLevel)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks field constraints and that the timezone can be loaded.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		var fields []string
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
