package models

import (
	"time"
)

// RealTimeQuote holds a live OHLCV snapshot from a real-time price source
type RealTimeQuote struct {
	Code          string    `json:"code"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`          // current/last price
	PreviousClose float64   `json:"previous_close"` // previous day's close
	Change        float64   `json:"change"`
	ChangePct     float64   `json:"change_p"`
	Volume        int64     `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
}

// Fundamentals contains provider fundamentals for a stock. Pointer fields
// are nil when the provider reported no value.
type Fundamentals struct {
	Ticker     string `json:"ticker"`
	Name       string `json:"name"`
	Type       string `json:"type"` // "Common Stock", "ETF", ...
	Sector     string `json:"sector"`
	Industry   string `json:"industry"`
	Country    string `json:"country"`
	CountryISO string `json:"country_iso,omitempty"`
	Currency   string `json:"currency,omitempty"`

	MarketCap         *float64 `json:"market_cap,omitempty"`
	PE                *float64 `json:"pe_ratio,omitempty"`
	PB                *float64 `json:"pb_ratio,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	DividendShare     *float64 `json:"dividend_share,omitempty"`
	DividendYield     *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio       *float64 `json:"payout_ratio,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`
	OperatingMargin   *float64 `json:"operating_margin,omitempty"`
	ReturnOnAssets    *float64 `json:"return_on_assets,omitempty"`
	ReturnOnEquity    *float64 `json:"return_on_equity,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`

	// Most recent yearly statements; nil when the provider has none
	BalanceSheet    *FinancialStatement `json:"balance_sheet,omitempty"`
	IncomeStatement *FinancialStatement `json:"income_statement,omitempty"`
	CashFlow        *FinancialStatement `json:"cash_flow,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// FinancialStatement is one reporting period of a statement, keyed by the
// provider's field names.
type FinancialStatement struct {
	Date     string             `json:"date"`
	Currency string             `json:"currency,omitempty"`
	Items    map[string]float64 `json:"items"`
}

// Get returns the statement value for key and whether it was reported.
func (s *FinancialStatement) Get(key string) (float64, bool) {
	if s == nil || s.Items == nil {
		return 0, false
	}
	v, ok := s.Items[key]
	return v, ok
}
