package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Limits on the number of tickers a single run may process
const (
	MinMaxTickers = 1
	MaxMaxTickers = 100
)

// Config holds all configuration for valuescope
type Config struct {
	Environment string         `toml:"environment"`
	Tickers     string         `toml:"tickers"` // default ticker list, comma separated
	Analysis    AnalysisConfig `toml:"analysis"`
	Pacing      PacingConfig   `toml:"pacing"`
	WACC        WACCConfig     `toml:"wacc"`
	Source      SourceConfig   `toml:"source"`
	Clients     ClientsConfig  `toml:"clients"`
	Server      ServerConfig   `toml:"server"`
	Logging     LoggingConfig  `toml:"logging"`
}

// AnalysisConfig holds batch processing configuration
type AnalysisConfig struct {
	MaxTickers int  `toml:"max_tickers"`
	BatchSize  int  `toml:"batch_size"`
	NestedPace bool `toml:"nested_pace"` // extra pacing wait inside the WACC/ROIC step
}

// PacingConfig selects the pacing policy between provider calls.
// Mode is "fixed", "token_bucket" or "none".
type PacingConfig struct {
	Mode  string  `toml:"mode"`
	Delay string  `toml:"delay"` // fixed mode
	Rate  float64 `toml:"rate"`  // token_bucket mode, requests per second
	Burst int     `toml:"burst"` // token_bucket mode
}

// GetDelay parses and returns the fixed pacing delay
func (c *PacingConfig) GetDelay() time.Duration {
	d, err := time.ParseDuration(c.Delay)
	if err != nil {
		return time.Second
	}
	return d
}

// WACCConfig holds the cost-of-capital parameters, as fractions (0.05 = 5%)
type WACCConfig struct {
	RiskFreeRate float64 `toml:"risk_free_rate"`
	MarketReturn float64 `toml:"market_return"`
	TaxRate      float64 `toml:"tax_rate"` // used when pre-tax income is zero
}

// SourceConfig selects the financial data source.
// Kind is "eodhd" or "file".
type SourceConfig struct {
	Kind            string `toml:"kind"`
	FixturesDir     string `toml:"fixtures_dir"`
	DefaultExchange string `toml:"default_exchange"`
	FetchTimeout    string `toml:"fetch_timeout"`
}

// GetFetchTimeout parses and returns the per-ticker fetch timeout
func (c *SourceConfig) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Tickers:     "AAPL, MSFT, GOOGL, AMZN, TSLA",
		Analysis: AnalysisConfig{
			MaxTickers: 50,
			BatchSize:  10,
			NestedPace: true,
		},
		Pacing: PacingConfig{
			Mode:  "fixed",
			Delay: "1s",
			Rate:  1,
			Burst: 1,
		},
		WACC: WACCConfig{
			RiskFreeRate: 0.02,
			MarketReturn: 0.07,
			TaxRate:      0.21,
		},
		Source: SourceConfig{
			Kind:            "eodhd",
			FixturesDir:     "testdata/fixtures",
			DefaultExchange: "US",
			FetchTimeout:    "60s",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(paths ...string) (*Config, error) {
	// Missing .env is not an error
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VALUESCOPE_ENV"); env != "" {
		config.Environment = env
	}

	if tickers := os.Getenv("VALUESCOPE_TICKERS"); tickers != "" {
		config.Tickers = tickers
	}

	if host := os.Getenv("VALUESCOPE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("VALUESCOPE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("VALUESCOPE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("VALUESCOPE_MAX_TICKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Analysis.MaxTickers = n
		}
	}

	if v := os.Getenv("VALUESCOPE_SOURCE"); v != "" {
		config.Source.Kind = strings.ToLower(v)
	}

	if v := os.Getenv("VALUESCOPE_FIXTURES_DIR"); v != "" {
		config.Source.FixturesDir = v
	}

	// API key: EODHD_API_KEY first, then the prefixed variant
	for _, name := range []string{"EODHD_API_KEY", "VALUESCOPE_EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
			break
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// Validate returns an error describing every invalid setting, or nil.
func (c *Config) Validate() error {
	var problems []string

	if c.Analysis.MaxTickers < MinMaxTickers || c.Analysis.MaxTickers > MaxMaxTickers {
		problems = append(problems, fmt.Sprintf("analysis.max_tickers must be between %d and %d, got %d",
			MinMaxTickers, MaxMaxTickers, c.Analysis.MaxTickers))
	}
	if c.Analysis.BatchSize < 1 {
		problems = append(problems, fmt.Sprintf("analysis.batch_size must be positive, got %d", c.Analysis.BatchSize))
	}

	switch c.Pacing.Mode {
	case "fixed":
		if _, err := time.ParseDuration(c.Pacing.Delay); err != nil {
			problems = append(problems, fmt.Sprintf("pacing.delay %q is not a duration", c.Pacing.Delay))
		}
	case "token_bucket":
		if c.Pacing.Rate <= 0 {
			problems = append(problems, "pacing.rate must be positive for token_bucket mode")
		}
	case "none":
	default:
		problems = append(problems, fmt.Sprintf("pacing.mode must be fixed, token_bucket or none, got %q", c.Pacing.Mode))
	}

	if c.WACC.RiskFreeRate < 0 || c.WACC.RiskFreeRate > 0.2 {
		problems = append(problems, "wacc.risk_free_rate must be between 0 and 0.20")
	}
	if c.WACC.MarketReturn < 0 || c.WACC.MarketReturn > 0.3 {
		problems = append(problems, "wacc.market_return must be between 0 and 0.30")
	}
	if c.WACC.TaxRate < 0 || c.WACC.TaxRate > 0.5 {
		problems = append(problems, "wacc.tax_rate must be between 0 and 0.50")
	}

	switch c.Source.Kind {
	case "eodhd":
		if c.Clients.EODHD.APIKey == "" {
			problems = append(problems, "clients.eodhd.api_key (or EODHD_API_KEY) is required for the eodhd source")
		}
	case "file":
		if c.Source.FixturesDir == "" {
			problems = append(problems, "source.fixtures_dir is required for the file source")
		}
	default:
		problems = append(problems, fmt.Sprintf("source.kind must be eodhd or file, got %q", c.Source.Kind))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
