// Package batch runs the per-ticker pipeline in paced, sequential batches.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
	"github.com/bobmcallan/valuescope/internal/models"
	"github.com/bobmcallan/valuescope/internal/services/valuation"
)

// Defaults applied when Options fields are unset
const (
	DefaultMaxTickers = 50
	DefaultBatchSize  = 10
)

// Options controls batching and pacing.
type Options struct {
	MaxTickers   int
	BatchSize    int
	NestedPace   bool          // wait again inside the WACC/ROIC step
	FetchTimeout time.Duration // per-ticker deadline, zero means none
}

// OptionsFromConfig maps the analysis and source sections onto Options.
func OptionsFromConfig(cfg *common.Config) Options {
	return Options{
		MaxTickers:   cfg.Analysis.MaxTickers,
		BatchSize:    cfg.Analysis.BatchSize,
		NestedPace:   cfg.Analysis.NestedPace,
		FetchTimeout: cfg.Source.GetFetchTimeout(),
	}
}

// Orchestrator processes tickers one at a time. Each Run owns its state, so
// one Orchestrator may serve concurrent runs.
type Orchestrator struct {
	source     interfaces.FinancialSource
	calculator *valuation.Calculator
	pacer      interfaces.Pacer
	opts       Options
	logger     *common.Logger
}

// NewOrchestrator creates an orchestrator. A nil pacer means NoDelay and a
// nil logger means silent.
func NewOrchestrator(
	source interfaces.FinancialSource,
	calculator *valuation.Calculator,
	pacer interfaces.Pacer,
	opts Options,
	logger *common.Logger,
) *Orchestrator {
	if opts.MaxTickers <= 0 {
		opts.MaxTickers = DefaultMaxTickers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if pacer == nil {
		pacer = NoDelay{}
	}
	if calculator == nil {
		calculator = valuation.NewCalculator(valuation.DefaultParams())
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Orchestrator{
		source:     source,
		calculator: calculator,
		pacer:      pacer,
		opts:       opts,
		logger:     logger,
	}
}

// WithMaxTickers returns a copy of o limited to n tickers per run. Values
// outside 1..common.MaxMaxTickers leave the limit unchanged.
func (o *Orchestrator) WithMaxTickers(n int) *Orchestrator {
	cp := *o
	if n >= common.MinMaxTickers && n <= common.MaxMaxTickers {
		cp.opts.MaxTickers = n
	}
	return &cp
}

// Run processes tickers in input order and returns one result per processed
// ticker. Input beyond MaxTickers is dropped. If ctx is cancelled, Run stops
// between tickers and returns the partial report together with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, tickers []models.Ticker, progress interfaces.ProgressFunc) (*models.Report, error) {
	report := &models.Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Requested: len(tickers),
	}

	if len(tickers) > o.opts.MaxTickers {
		o.logger.Warn().
			Int("requested", len(tickers)).
			Int("max_tickers", o.opts.MaxTickers).
			Msg("Ticker list truncated")
		tickers = tickers[:o.opts.MaxTickers]
	}

	total := len(tickers)
	report.Results = make([]models.TickerResult, 0, total)

	finish := func(err error) (*models.Report, error) {
		report.CompletedAt = time.Now()
		return report, err
	}

	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			o.logger.Warn().Int("done", i).Int("total", total).Msg("Analysis cancelled")
			return finish(err)
		}

		batch := i/o.opts.BatchSize + 1
		if i%o.opts.BatchSize == 0 {
			end := min(i+o.opts.BatchSize, total)
			o.logger.Info().
				Int("batch", batch).
				Int("from", i+1).
				Int("to", end).
				Int("total", total).
				Msg("Processing batch")
		}

		result := o.processTicker(ctx, ticker)
		report.Results = append(report.Results, result)

		if progress != nil {
			progress(models.Progress{
				Done:     i + 1,
				Total:    total,
				Batch:    batch,
				Ticker:   ticker,
				Fraction: float64(i+1) / float64(total),
			})
		}

		if i < total-1 {
			if err := o.pacer.Wait(ctx); err != nil {
				return finish(err)
			}
		}
	}

	o.logger.Info().
		Str("run_id", report.RunID).
		Int("succeeded", len(report.Successes())).
		Int("failed", len(report.Failures())).
		Msg("Analysis complete")

	return finish(nil)
}

// processTicker fetches and evaluates one ticker. Any error or panic is
// confined to the returned failure.
func (o *Orchestrator) processTicker(ctx context.Context, ticker models.Ticker) (result models.TickerResult) {
	log := o.logger.ForTicker(ticker.String())

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic while processing ticker")
			result = &models.TickerFailure{Ticker: ticker, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	raw, err := o.fetch(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch financial data")
		return &models.TickerFailure{Ticker: ticker, Err: err}
	}

	success := &models.TickerSuccess{
		Ticker:  ticker,
		Profile: raw.Profile.WithDefaults(ticker),
		Price:   valuation.Price(raw),
		Ratios:  o.calculator.ExtractRatios(raw),
	}

	if o.opts.NestedPace {
		if err := o.pacer.Wait(ctx); err != nil {
			return &models.TickerFailure{Ticker: ticker, Err: err}
		}
	}

	wacc, err := o.calculator.ComputeWaccRoic(raw)
	switch {
	case errors.Is(err, models.ErrComputationUnavailable):
		log.Debug().Msg("WACC/ROIC unavailable")
		success.WACCError = err.Error()
	case err != nil:
		return &models.TickerFailure{Ticker: ticker, Err: err}
	default:
		success.WACC = wacc
	}

	log.Debug().Msg("Ticker processed")
	return success
}

func (o *Orchestrator) fetch(ctx context.Context, ticker models.Ticker) (*models.RawFinancials, error) {
	if o.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.FetchTimeout)
		defer cancel()
	}
	raw, err := o.source.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, models.NewSourceError(ticker, errors.New("source returned no data"))
	}
	return raw, nil
}
