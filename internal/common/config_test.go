package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Analysis.MaxTickers != 50 {
		t.Errorf("Analysis.MaxTickers default = %d, want 50", cfg.Analysis.MaxTickers)
	}
	if cfg.Analysis.BatchSize != 10 {
		t.Errorf("Analysis.BatchSize default = %d, want 10", cfg.Analysis.BatchSize)
	}
	if !cfg.Analysis.NestedPace {
		t.Error("Analysis.NestedPace should default to true")
	}
	if cfg.Pacing.GetDelay() != time.Second {
		t.Errorf("Pacing delay default = %v, want 1s", cfg.Pacing.GetDelay())
	}
	if cfg.WACC.RiskFreeRate != 0.02 || cfg.WACC.MarketReturn != 0.07 || cfg.WACC.TaxRate != 0.21 {
		t.Errorf("WACC defaults = %+v, want 0.02/0.07/0.21", cfg.WACC)
	}
	if cfg.Source.GetFetchTimeout() != 60*time.Second {
		t.Errorf("fetch timeout default = %v, want 60s", cfg.Source.GetFetchTimeout())
	}
}

func TestConfig_DurationFallbacks(t *testing.T) {
	p := PacingConfig{Delay: "soon"}
	if p.GetDelay() != time.Second {
		t.Errorf("GetDelay() = %v for invalid input, want 1s", p.GetDelay())
	}
	s := SourceConfig{FetchTimeout: ""}
	if s.GetFetchTimeout() != 60*time.Second {
		t.Errorf("GetFetchTimeout() = %v for empty input, want 60s", s.GetFetchTimeout())
	}
	e := EODHDConfig{Timeout: "5s"}
	if e.GetTimeout() != 5*time.Second {
		t.Errorf("GetTimeout() = %v, want 5s", e.GetTimeout())
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VALUESCOPE_PORT", "9090")
	t.Setenv("VALUESCOPE_TICKERS", "BHP.AU, CBA.AU")
	t.Setenv("VALUESCOPE_MAX_TICKERS", "25")
	t.Setenv("VALUESCOPE_SOURCE", "FILE")
	t.Setenv("VALUESCOPE_FIXTURES_DIR", "/tmp/fixtures")
	t.Setenv("VALUESCOPE_LOG_LEVEL", "debug")
	t.Setenv("EODHD_API_KEY", "env-key")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Tickers != "BHP.AU, CBA.AU" {
		t.Errorf("Tickers = %q", cfg.Tickers)
	}
	if cfg.Analysis.MaxTickers != 25 {
		t.Errorf("MaxTickers = %d, want 25", cfg.Analysis.MaxTickers)
	}
	if cfg.Source.Kind != "file" {
		t.Errorf("Source.Kind = %q, want file", cfg.Source.Kind)
	}
	if cfg.Source.FixturesDir != "/tmp/fixtures" {
		t.Errorf("FixturesDir = %q", cfg.Source.FixturesDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Clients.EODHD.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.Clients.EODHD.APIKey)
	}
}

func TestConfig_EnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("VALUESCOPE_PORT", "not-a-port")
	t.Setenv("VALUESCOPE_MAX_TICKERS", "lots")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want unchanged 8080", cfg.Server.Port)
	}
	if cfg.Analysis.MaxTickers != 50 {
		t.Errorf("MaxTickers = %d, want unchanged 50", cfg.Analysis.MaxTickers)
	}
}

func TestLoadConfig_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	writeFile(t, base, `
tickers = "AAPL, MSFT"

[analysis]
max_tickers = 20
batch_size = 5

[pacing]
mode = "token_bucket"
rate = 2.5
burst = 3

[wacc]
risk_free_rate = 0.04
`)
	writeFile(t, override, `
[analysis]
max_tickers = 30

[source]
kind = "file"
fixtures_dir = "fixtures"
`)

	cfg, err := LoadConfig(base, override, filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Tickers != "AAPL, MSFT" {
		t.Errorf("Tickers = %q", cfg.Tickers)
	}
	if cfg.Analysis.MaxTickers != 30 {
		t.Errorf("MaxTickers = %d, want 30 from override", cfg.Analysis.MaxTickers)
	}
	if cfg.Analysis.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want 5 from base", cfg.Analysis.BatchSize)
	}
	if cfg.Pacing.Mode != "token_bucket" || cfg.Pacing.Rate != 2.5 || cfg.Pacing.Burst != 3 {
		t.Errorf("Pacing = %+v", cfg.Pacing)
	}
	if cfg.WACC.RiskFreeRate != 0.04 {
		t.Errorf("RiskFreeRate = %v, want 0.04", cfg.WACC.RiskFreeRate)
	}
	if cfg.WACC.MarketReturn != 0.07 {
		t.Errorf("MarketReturn = %v, want default 0.07", cfg.WACC.MarketReturn)
	}
	if cfg.Source.Kind != "file" {
		t.Errorf("Source.Kind = %q, want file", cfg.Source.Kind)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[analysis\nmax_tickers = ")

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := NewDefaultConfig()
		cfg.Clients.EODHD.APIKey = "key"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("default config with key should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"max tickers zero", func(c *Config) { c.Analysis.MaxTickers = 0 }, "max_tickers"},
		{"max tickers too high", func(c *Config) { c.Analysis.MaxTickers = 101 }, "max_tickers"},
		{"batch size", func(c *Config) { c.Analysis.BatchSize = 0 }, "batch_size"},
		{"pacing mode", func(c *Config) { c.Pacing.Mode = "jitter" }, "pacing.mode"},
		{"pacing delay", func(c *Config) { c.Pacing.Delay = "later" }, "pacing.delay"},
		{"token rate", func(c *Config) { c.Pacing.Mode = "token_bucket"; c.Pacing.Rate = 0 }, "pacing.rate"},
		{"risk free", func(c *Config) { c.WACC.RiskFreeRate = 0.5 }, "risk_free_rate"},
		{"market return", func(c *Config) { c.WACC.MarketReturn = -0.1 }, "market_return"},
		{"tax rate", func(c *Config) { c.WACC.TaxRate = 0.9 }, "tax_rate"},
		{"missing key", func(c *Config) { c.Clients.EODHD.APIKey = "" }, "api_key"},
		{"file without dir", func(c *Config) { c.Source.Kind = "file"; c.Source.FixturesDir = "" }, "fixtures_dir"},
		{"unknown source", func(c *Config) { c.Source.Kind = "yahoo" }, "source.kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Analysis.MaxTickers = 0
	cfg.WACC.TaxRate = 2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"max_tickers", "tax_rate", "api_key"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.IsProduction() {
		t.Error("development should not be production")
	}
	cfg.Environment = " PROD "
	if !cfg.IsProduction() {
		t.Error("PROD should be production")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfig_ShippedExampleMatchesDefaults(t *testing.T) {
	for _, name := range []string{"VALUESCOPE_ENV", "VALUESCOPE_TICKERS", "VALUESCOPE_HOST", "VALUESCOPE_PORT",
		"VALUESCOPE_LOG_LEVEL", "VALUESCOPE_MAX_TICKERS", "VALUESCOPE_SOURCE", "VALUESCOPE_FIXTURES_DIR",
		"EODHD_API_KEY", "VALUESCOPE_EODHD_API_KEY"} {
		t.Setenv(name, "")
	}

	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "valuescope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := NewDefaultConfig()
	if *cfg != *want {
		t.Errorf("example config diverges from defaults:\n got  %+v\n want %+v", *cfg, *want)
	}
}
