package models

import (
	"time"
)

// TickerResult is the outcome of processing one ticker. It is either a
// *TickerSuccess or a *TickerFailure; handle it with a type switch.
type TickerResult interface {
	Symbol() Ticker
	tickerResult()
}

// TickerSuccess is a ticker whose financial data was retrieved. WACC is nil
// when the computation was unavailable; WACCError then holds the reason.
type TickerSuccess struct {
	Ticker    Ticker      `json:"ticker"`
	Profile   Profile     `json:"profile"`
	Price     *float64    `json:"price,omitempty"`
	Ratios    RatioSet    `json:"ratios"`
	WACC      *WACCResult `json:"wacc,omitempty"`
	WACCError string      `json:"wacc_error,omitempty"`
}

// Symbol returns the ticker.
func (s *TickerSuccess) Symbol() Ticker { return s.Ticker }
func (s *TickerSuccess) tickerResult()  {}

// TickerFailure is a ticker that could not be processed.
type TickerFailure struct {
	Ticker Ticker `json:"ticker"`
	Err    error  `json:"-"`
}

// Symbol returns the ticker.
func (f *TickerFailure) Symbol() Ticker { return f.Ticker }
func (f *TickerFailure) tickerResult()  {}

// Error returns the failure description.
func (f *TickerFailure) Error() string {
	if f.Err == nil {
		return "unknown error"
	}
	return f.Err.Error()
}

// Report is the ordered outcome of a single analysis run.
type Report struct {
	RunID       string         `json:"run_id"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Requested   int            `json:"requested"` // tickers supplied before truncation
	Results     []TickerResult `json:"-"`
}

// Successes returns the successful results in input order.
func (r *Report) Successes() []*TickerSuccess {
	var out []*TickerSuccess
	for _, res := range r.Results {
		if s, ok := res.(*TickerSuccess); ok {
			out = append(out, s)
		}
	}
	return out
}

// Failures returns the failed results in input order.
func (r *Report) Failures() []*TickerFailure {
	var out []*TickerFailure
	for _, res := range r.Results {
		if f, ok := res.(*TickerFailure); ok {
			out = append(out, f)
		}
	}
	return out
}

// Progress is emitted after each ticker is processed.
type Progress struct {
	Done     int     `json:"done"`
	Total    int     `json:"total"`
	Batch    int     `json:"batch"` // 1-based batch number
	Ticker   Ticker  `json:"ticker"`
	Fraction float64 `json:"fraction"`
}

// Value-creation labels
const (
	LabelCreatingValue    = "Creating value"
	LabelDestroyingValue  = "Destroying value"
	LabelInsufficientData = "Insufficient data"
)

// Table column names
const (
	ColTicker          = "Ticker"
	ColName            = "Name"
	ColSector          = "Sector"
	ColCountry         = "Country"
	ColIndustry        = "Industry"
	ColPrice           = "Price"
	ColPE              = "P/E"
	ColPB              = "P/B"
	ColPFCF            = "P/FCF"
	ColDividendRate    = "Dividend Rate"
	ColDividendYield   = "Dividend Yield %"
	ColPayoutRatio     = "Payout Ratio"
	ColROA             = "ROA"
	ColROE             = "ROE"
	ColCurrentRatio    = "Current Ratio"
	ColQuickRatio      = "Quick Ratio"
	ColLtDebtToEquity  = "LtDebt/Eq"
	ColDebtToEquity    = "Debt/Eq"
	ColOperatingMargin = "Oper Margin"
	ColProfitMargin    = "Profit Margin"
	ColWACC            = "WACC"
	ColROIC            = "ROIC"
	ColSpread          = "ROIC - WACC"
	ColValueCreation   = "Value Creation"
)

// Row is one successfully processed ticker, ready for presentation.
// Display holds the formatted value of every column.
type Row struct {
	Ticker       Ticker            `json:"ticker"`
	Profile      Profile           `json:"profile"`
	Price        *float64          `json:"price,omitempty"`
	Ratios       RatioSet          `json:"ratios"`
	WACC         *WACCResult       `json:"wacc,omitempty"`
	CreatesValue *bool             `json:"creates_value,omitempty"`
	ValueLabel   string            `json:"value_label"`
	Display      map[string]string `json:"display"`
}

// SkippedTicker records a ticker dropped from the table.
type SkippedTicker struct {
	Ticker Ticker `json:"ticker"`
	Reason string `json:"reason"`
}

// Table is the aggregated, presentation-ready dataset of a run.
type Table struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Columns     []string        `json:"columns"`
	Rows        []Row           `json:"rows"`
	Skipped     []SkippedTicker `json:"skipped,omitempty"`
}
