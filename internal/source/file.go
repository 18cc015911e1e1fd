package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/valuescope/internal/interfaces"
	"github.com/bobmcallan/valuescope/internal/models"
)

// FileSource reads RawFinancials documents from <dir>/<TICKER>.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a source reading fixtures from dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Fetch implements interfaces.FinancialSource.
func (s *FileSource) Fetch(ctx context.Context, ticker models.Ticker) (*models.RawFinancials, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.NewSourceError(ticker, err)
	}
	if ticker == "" {
		return nil, models.NewSourceError(ticker, models.ErrEmptyTicker)
	}
	if name := ticker.String(); filepath.Base(name) != name || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return nil, models.NewSourceError(ticker, fmt.Errorf("invalid ticker %q", name))
	}

	path := filepath.Join(s.dir, ticker.String()+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.NewSourceError(ticker, fmt.Errorf("unknown ticker: no fixture at %s", path))
	}
	if err != nil {
		return nil, models.NewSourceError(ticker, fmt.Errorf("failed to read %s: %w", path, err))
	}

	var raw models.RawFinancials
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, models.NewSourceError(ticker, fmt.Errorf("failed to parse %s: %w", path, err))
	}

	raw.Ticker = ticker
	if raw.Summary == nil {
		raw.Summary = models.LineItems{}
	}
	if raw.BalanceSheet == nil {
		raw.BalanceSheet = models.LineItems{}
	}
	if raw.IncomeStatement == nil {
		raw.IncomeStatement = models.LineItems{}
	}
	if raw.CashFlow == nil {
		raw.CashFlow = models.LineItems{}
	}

	return &raw, nil
}

var _ interfaces.FinancialSource = (*FileSource)(nil)
