// Package app wires configuration, the financial source and the analysis
// pipeline. It is the shared core used by cmd/valuescope and
// cmd/valuescope-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/valuescope/internal/clients/eodhd"
	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
	"github.com/bobmcallan/valuescope/internal/models"
	"github.com/bobmcallan/valuescope/internal/services/batch"
	"github.com/bobmcallan/valuescope/internal/services/report"
	"github.com/bobmcallan/valuescope/internal/services/valuation"
	"github.com/bobmcallan/valuescope/internal/source"
)

// App holds the initialized pipeline.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	EODHDClient  interfaces.EODHDClient // nil for the file source
	Source       interfaces.FinancialSource
	Calculator   *valuation.Calculator
	Pacer        interfaces.Pacer
	Orchestrator *batch.Orchestrator
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath, else VALUESCOPE_CONFIG, else
// valuescope.toml next to the binary, else config/valuescope.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("VALUESCOPE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "valuescope.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/valuescope.toml" // fallback for development
		}
	}
	return configPath
}

// LoadConfig resolves and loads configuration. It does not validate, so
// callers can apply overrides first.
func LoadConfig(configPath string) (*common.Config, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, nil
}

// NewApp loads configuration from configPath and initializes the pipeline.
func NewApp(configPath string) (*App, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return New(config, common.NewLoggerFromConfig(config.Logging, os.Stderr))
}

// New validates config and initializes the pipeline with logger.
func New(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	src, client, err := newSource(config, logger)
	if err != nil {
		return nil, err
	}

	pacer, err := batch.NewPacerFromConfig(config.Pacing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pacer: %w", err)
	}

	calculator := valuation.NewCalculator(valuation.Params{
		RiskFreeRate:    config.WACC.RiskFreeRate,
		MarketReturn:    config.WACC.MarketReturn,
		FallbackTaxRate: config.WACC.TaxRate,
	})

	orchestrator := batch.NewOrchestrator(src, calculator, pacer, batch.OptionsFromConfig(config), logger)

	a := &App{
		Config:       config,
		Logger:       logger,
		EODHDClient:  client,
		Source:       src,
		Calculator:   calculator,
		Pacer:        pacer,
		Orchestrator: orchestrator,
		StartupTime:  startupStart,
	}

	logger.Info().
		Str("source", config.Source.Kind).
		Str("pacing", config.Pacing.Mode).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

func newSource(config *common.Config, logger *common.Logger) (interfaces.FinancialSource, interfaces.EODHDClient, error) {
	switch config.Source.Kind {
	case "file":
		return source.NewFileSource(config.Source.FixturesDir), nil, nil
	case "eodhd":
		client := eodhd.NewClient(config.Clients.EODHD.APIKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
		src := source.NewEODHDSource(client,
			source.WithDefaultExchange(config.Source.DefaultExchange),
			source.WithLogger(logger),
		)
		return src, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", config.Source.Kind)
	}
}

// Analyze runs the pipeline for tickers and aggregates the results. On
// cancellation it returns the partial report and the context error.
func (a *App) Analyze(ctx context.Context, tickers []models.Ticker, opts interfaces.AnalyzeOptions) (*models.Table, *models.Report, error) {
	if len(tickers) == 0 {
		return nil, nil, models.ErrNoTickers
	}

	orch := a.Orchestrator
	if opts.MaxTickers > 0 {
		orch = orch.WithMaxTickers(opts.MaxTickers)
	}

	rep, err := orch.Run(ctx, tickers, opts.Progress)
	if err != nil {
		return nil, rep, err
	}

	table, err := report.Aggregate(rep)
	if err != nil {
		a.Logger.Warn().Err(err).Int("failed", len(rep.Failures())).Msg("No ticker produced valid data")
		return table, rep, err
	}
	return table, rep, nil
}

// DefaultTickers returns the configured default ticker list.
func (a *App) DefaultTickers() []models.Ticker {
	return models.ParseTickers(a.Config.Tickers)
}

var _ interfaces.AnalysisService = (*App)(nil)
