package interfaces

import (
	"context"

	"github.com/bobmcallan/valuescope/internal/models"
)

// FinancialSource retrieves raw financial statement data for one ticker.
// Implementations return a *models.SourceError on failure and never pace
// their own calls; the batch orchestrator does that.
type FinancialSource interface {
	Fetch(ctx context.Context, ticker models.Ticker) (*models.RawFinancials, error)
}

// Pacer blocks between provider calls to respect rate limits.
type Pacer interface {
	Wait(ctx context.Context) error
}

// ProgressFunc receives progress after each processed ticker.
type ProgressFunc func(models.Progress)

// AnalyzeOptions adjusts a single analysis run.
type AnalyzeOptions struct {
	MaxTickers int // zero uses the configured limit
	Progress   ProgressFunc
}

// AnalysisService runs the full pipeline: fetch, derive, aggregate.
type AnalysisService interface {
	// Analyze processes tickers and returns the aggregated table.
	// Returns models.ErrEmptyResult when every ticker failed.
	Analyze(ctx context.Context, tickers []models.Ticker, opts AnalyzeOptions) (*models.Table, *models.Report, error)
}
