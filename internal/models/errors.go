package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTicker is returned when a ticker normalizes to an empty string.
	ErrEmptyTicker = errors.New("ticker is empty")

	// ErrNoTickers is returned when an analysis is requested without tickers.
	ErrNoTickers = errors.New("at least one ticker is required")

	// ErrComputationUnavailable means WACC/ROIC has no denominator
	// (market cap and total debt are both zero).
	ErrComputationUnavailable = errors.New("WACC/ROIC unavailable: market cap and total debt are both zero")

	// ErrEmptyResult means every ticker in a run failed.
	ErrEmptyResult = errors.New("no valid data could be retrieved for any ticker")
)

// SourceError reports that financial data could not be retrieved for a ticker.
type SourceError struct {
	Ticker Ticker
	Cause  error
}

// NewSourceError wraps cause for ticker.
func NewSourceError(ticker Ticker, cause error) *SourceError {
	return &SourceError{Ticker: ticker, Cause: cause}
}

func (e *SourceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("source error for %s", e.Ticker)
	}
	return fmt.Sprintf("source error for %s: %v", e.Ticker, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
