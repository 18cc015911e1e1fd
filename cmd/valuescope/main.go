// Command valuescope analyses a list of tickers and prints a WACC/ROIC and
// financial ratio report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bobmcallan/valuescope/internal/app"
	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
	"github.com/bobmcallan/valuescope/internal/models"
	"github.com/bobmcallan/valuescope/internal/services/report"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	configPath   string
	tickers      string
	maxTickers   int
	batchSize    int
	pace         time.Duration
	source       string
	fixtures     string
	format       string
	chartsDir    string
	outPath      string
	riskFree     float64
	marketReturn float64
	taxRate      float64
	logLevel     string
	quiet        bool
	version      bool
	set          map[string]bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet("valuescope", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (default: VALUESCOPE_CONFIG or config/valuescope.toml)")
	fs.StringVar(&opts.tickers, "tickers", "", `comma separated tickers, e.g. "AAPL, MSFT, GOOGL"`)
	fs.IntVar(&opts.maxTickers, "max", 0, "maximum tickers to analyse (1-100)")
	fs.IntVar(&opts.batchSize, "batch", 0, "tickers per batch")
	fs.DurationVar(&opts.pace, "pace", 0, "fixed delay between provider calls; 0 disables pacing")
	fs.StringVar(&opts.source, "source", "", "data source: eodhd or file")
	fs.StringVar(&opts.fixtures, "fixtures", "", "fixture directory for the file source")
	fs.StringVar(&opts.format, "format", report.FormatNameText, "output format: text, markdown, html or json")
	fs.StringVar(&opts.chartsDir, "charts", "", "write PNG charts to this directory")
	fs.StringVar(&opts.outPath, "out", "", "write the report to this file instead of stdout")
	fs.Float64Var(&opts.riskFree, "risk-free", 0, "risk-free rate in percent")
	fs.Float64Var(&opts.marketReturn, "market-return", 0, "expected market return in percent")
	fs.Float64Var(&opts.taxRate, "tax-rate", 0, "fallback tax rate in percent")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&opts.quiet, "quiet", false, "do not print the banner")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		// Bare arguments are treated as tickers
		extra := strings.Join(fs.Args(), ",")
		if opts.tickers != "" {
			extra = opts.tickers + "," + extra
		}
		opts.tickers = extra
		opts.set["tickers"] = true
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if !report.ValidFormat(opts.format) {
		return nil, fmt.Errorf("unknown -format %q", opts.format)
	}
	return opts, nil
}

// applyOverrides copies explicitly set flags onto config.
func applyOverrides(config *common.Config, opts *options) {
	if opts.set["tickers"] {
		config.Tickers = opts.tickers
	}
	if opts.set["max"] {
		config.Analysis.MaxTickers = opts.maxTickers
	}
	if opts.set["batch"] {
		config.Analysis.BatchSize = opts.batchSize
	}
	if opts.set["pace"] {
		if opts.pace <= 0 {
			config.Pacing.Mode = "none"
		} else {
			config.Pacing.Mode = "fixed"
			config.Pacing.Delay = opts.pace.String()
		}
	}
	if opts.set["source"] {
		config.Source.Kind = strings.ToLower(opts.source)
	}
	if opts.set["fixtures"] {
		config.Source.FixturesDir = opts.fixtures
		if !opts.set["source"] {
			config.Source.Kind = "file"
		}
	}
	if opts.set["risk-free"] {
		config.WACC.RiskFreeRate = opts.riskFree / 100
	}
	if opts.set["market-return"] {
		config.WACC.MarketReturn = opts.marketReturn / 100
	}
	if opts.set["tax-rate"] {
		config.WACC.TaxRate = opts.taxRate / 100
	}
	if opts.set["log-level"] {
		config.Logging.Level = opts.logLevel
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "valuescope: %v\n", err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintf(stdout, "valuescope %s\n", common.CurrentBuild())
		return exitOK
	}

	config, err := app.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "valuescope: %v\n", err)
		return exitError
	}
	applyOverrides(config, opts)

	logger := common.NewLoggerFromConfig(config.Logging, stderr)
	if opts.quiet {
		logger = common.NewSilentLogger()
	} else {
		common.PrintBanner(stderr, config, "cli", logger)
	}

	a, err := app.New(config, logger)
	if err != nil {
		fmt.Fprintf(stderr, "valuescope: %v\n", err)
		return exitError
	}

	tickers := a.DefaultTickers()
	if len(tickers) == 0 {
		fmt.Fprintln(stderr, "valuescope: no tickers given; use -tickers")
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, _, err := a.Analyze(ctx, tickers, interfaces.AnalyzeOptions{
		Progress: func(p models.Progress) {
			logger.Info().
				Str("ticker", p.Ticker.String()).
				Int("batch", p.Batch).
				Int("done", p.Done).
				Int("total", p.Total).
				Msgf("Processed %s (%d/%d)", p.Ticker, p.Done, p.Total)
		},
	})
	if errors.Is(err, models.ErrEmptyResult) {
		fmt.Fprintf(stderr, "valuescope: %v\n", err)
		if table != nil {
			for _, s := range table.Skipped {
				fmt.Fprintf(stderr, "  %s: %s\n", s.Ticker, s.Reason)
			}
		}
		return exitError
	}
	if err != nil {
		fmt.Fprintf(stderr, "valuescope: analysis failed: %v\n", err)
		return exitError
	}

	if err := writeReport(table, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "valuescope: %v\n", err)
		return exitError
	}

	if opts.chartsDir != "" {
		if err := writeCharts(table, opts.chartsDir, logger); err != nil {
			fmt.Fprintf(stderr, "valuescope: %v\n", err)
			return exitError
		}
	}

	return exitOK
}

func writeReport(table *models.Table, opts *options, stdout io.Writer) error {
	body, _, err := report.Render(table, opts.format)
	if err != nil {
		return err
	}
	if opts.outPath == "" {
		_, err = stdout.Write(body)
		return err
	}
	if err := os.WriteFile(opts.outPath, body, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// writeCharts renders every chart kind into dir as <kind>.png. Kinds with no
// data are skipped.
func writeCharts(table *models.Table, dir string, logger *common.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create charts directory: %w", err)
	}
	for _, kind := range report.ChartKinds() {
		png, err := report.RenderChart(table, kind)
		if errors.Is(err, report.ErrNoChartData) {
			logger.Warn().Str("chart", kind).Msg("No data for chart, skipped")
			continue
		}
		if err != nil {
			return err
		}
		path := filepath.Join(dir, kind+".png")
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("failed to write chart %s: %w", path, err)
		}
		logger.Info().Str("path", path).Msg("Chart written")
	}
	return nil
}
