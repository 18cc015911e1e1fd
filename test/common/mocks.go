// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"sync"

	"github.com/bobmcallan/valuescope/internal/models"
)

// MockEODHDClient implements interfaces.EODHDClient for testing
type MockEODHDClient struct {
	Fundamentals  map[string]*models.Fundamentals
	Quotes        map[string]*models.RealTimeQuote
	FundErrors    map[string]error
	QuoteErrors   map[string]error
	GetFundCalls  int
	GetQuoteCalls int
}

// NewMockEODHDClient creates a mock EODHD client
func NewMockEODHDClient() *MockEODHDClient {
	return &MockEODHDClient{
		Fundamentals: make(map[string]*models.Fundamentals),
		Quotes:       make(map[string]*models.RealTimeQuote),
		FundErrors:   make(map[string]error),
		QuoteErrors:  make(map[string]error),
	}
}

func (m *MockEODHDClient) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	m.GetFundCalls++
	if err, ok := m.FundErrors[ticker]; ok {
		return nil, err
	}
	if data, ok := m.Fundamentals[ticker]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no fundamentals for %s", ticker)
}

func (m *MockEODHDClient) GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error) {
	m.GetQuoteCalls++
	if err, ok := m.QuoteErrors[ticker]; ok {
		return nil, err
	}
	if q, ok := m.Quotes[ticker]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("no quote for %s", ticker)
}

// MockFinancialSource implements interfaces.FinancialSource for testing.
// Tickers listed in Panics make Fetch panic.
type MockFinancialSource struct {
	mu     sync.Mutex
	Data   map[models.Ticker]*models.RawFinancials
	Errors map[models.Ticker]error
	Panics map[models.Ticker]bool
	Calls  []models.Ticker
}

// NewMockFinancialSource creates a source serving the given fixtures
func NewMockFinancialSource(data ...*models.RawFinancials) *MockFinancialSource {
	m := &MockFinancialSource{
		Data:   make(map[models.Ticker]*models.RawFinancials),
		Errors: make(map[models.Ticker]error),
		Panics: make(map[models.Ticker]bool),
	}
	for _, d := range data {
		m.Data[d.Ticker] = d
	}
	return m
}

func (m *MockFinancialSource) Fetch(ctx context.Context, ticker models.Ticker) (*models.RawFinancials, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, ticker)
	m.mu.Unlock()

	if m.Panics[ticker] {
		panic("mock source panic for " + ticker.String())
	}
	if err, ok := m.Errors[ticker]; ok {
		return nil, models.NewSourceError(ticker, err)
	}
	if d, ok := m.Data[ticker]; ok {
		return d, nil
	}
	return nil, models.NewSourceError(ticker, fmt.Errorf("unknown ticker"))
}

// CallCount returns the number of Fetch calls
func (m *MockFinancialSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RecordingPacer counts Wait calls and never blocks. Err, when set, is
// returned from every call.
type RecordingPacer struct {
	mu    sync.Mutex
	calls int
	Err   error
}

func (p *RecordingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	return ctx.Err()
}

// Calls returns the number of Wait calls
func (p *RecordingPacer) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// SampleFinancials returns a complete RawFinancials for ticker that yields a
// positive ROIC/WACC spread.
func SampleFinancials(ticker models.Ticker) *models.RawFinancials {
	return &models.RawFinancials{
		Ticker: ticker,
		Profile: models.Profile{
			Name:     ticker.String() + " Corp",
			Sector:   "Technology",
			Country:  "USA",
			Industry: "Software",
		},
		Summary: models.LineItems{
			models.SummaryCurrentPrice:         150,
			models.SummaryTrailingPE:           25.5,
			models.SummaryPriceToBook:          8.2,
			models.SummaryDividendRate:         0.96,
			models.SummaryDividendYield:        0.0064,
			models.SummaryPayoutRatio:          0.16,
			models.SummaryReturnOnAssets:       0.21,
			models.SummaryReturnOnEquity:       0.45,
			models.SummaryCurrentRatio:         1.1,
			models.SummaryQuickRatio:           0.9,
			models.SummaryLongTermDebtToEquity: 0.8,
			models.SummaryDebtToEquity:         1.2,
			models.SummaryOperatingMargins:     0.30,
			models.SummaryProfitMargins:        0.25,
			models.SummaryBeta:                 1.1,
			models.SummaryMarketCap:            1_000_000,
			models.SummarySharesOutstanding:    10_000,
		},
		BalanceSheet: models.LineItems{
			models.BalanceTotalDebt:         100_000,
			models.BalanceCashAndEquivalent: 50_000,
			models.BalanceCommonEquity:      400_000,
		},
		IncomeStatement: models.LineItems{
			models.IncomeInterestExpense:  4_000,
			models.IncomeEBT:              120_000,
			models.IncomeIncomeTaxExpense: 25_200,
			models.IncomeEBIT:             124_000,
		},
		CashFlow: models.LineItems{
			models.CashFlowFreeCashFlow: 60_000,
		},
	}
}

// NoCapitalFinancials returns data whose WACC is unavailable (no market cap
// and no debt) but whose ratios are still present.
func NoCapitalFinancials(ticker models.Ticker) *models.RawFinancials {
	return &models.RawFinancials{
		Ticker:  ticker,
		Profile: models.Profile{Name: ticker.String() + " Holdings"},
		Summary: models.LineItems{
			models.SummaryCurrentPrice: 12,
			models.SummaryTrailingPE:   9.5,
		},
		BalanceSheet:    models.LineItems{},
		IncomeStatement: models.LineItems{},
		CashFlow:        models.LineItems{},
	}
}
