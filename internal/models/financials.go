package models

// Summary line items (provider summary info)
const (
	SummaryCurrentPrice         = "currentPrice"
	SummaryTrailingPE           = "trailingPE"
	SummaryPriceToBook          = "priceToBook"
	SummaryDividendRate         = "dividendRate"
	SummaryDividendYield        = "dividendYield"
	SummaryPayoutRatio          = "payoutRatio"
	SummaryReturnOnAssets       = "returnOnAssets"
	SummaryReturnOnEquity       = "returnOnEquity"
	SummaryCurrentRatio         = "currentRatio"
	SummaryQuickRatio           = "quickRatio"
	SummaryLongTermDebtToEquity = "longTermDebtToEquity"
	SummaryDebtToEquity         = "debtToEquity"
	SummaryOperatingMargins     = "operatingMargins"
	SummaryProfitMargins        = "profitMargins"
	SummaryBeta                 = "beta"
	SummaryMarketCap            = "marketCap"
	SummarySharesOutstanding    = "sharesOutstanding"
)

// Balance sheet line items
const (
	BalanceTotalDebt         = "Total Debt"
	BalanceCashAndEquivalent = "Cash And Cash Equivalents"
	BalanceCommonEquity      = "Common Stock Equity"
)

// Income statement line items
const (
	IncomeInterestExpense  = "Interest Expense"
	IncomeEBT              = "Ebt"
	IncomeIncomeTaxExpense = "Income Tax Expense"
	IncomeEBIT             = "EBIT"
)

// Cash flow line items
const (
	CashFlowFreeCashFlow = "Free Cash Flow"
)

// NotAvailable is the display value for missing identity fields and ratios.
const NotAvailable = "N/A"

// LineItems maps a line-item name to its value. A missing key means the
// provider did not report the item.
type LineItems map[string]float64

// Get returns the value for name and whether it was present.
func (l LineItems) Get(name string) (float64, bool) {
	if l == nil {
		return 0, false
	}
	v, ok := l[name]
	return v, ok
}

// ValueOr returns the value for name, or fallback when absent.
func (l LineItems) ValueOr(name string, fallback float64) float64 {
	if v, ok := l.Get(name); ok {
		return v
	}
	return fallback
}

// Ptr returns a pointer to the value for name, or nil when absent.
func (l LineItems) Ptr(name string) *float64 {
	if v, ok := l.Get(name); ok {
		return &v
	}
	return nil
}

// Profile holds a company's identity fields.
type Profile struct {
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Country  string `json:"country"`
	Industry string `json:"industry"`
}

// WithDefaults fills empty identity fields: the name falls back to the
// ticker and the rest to NotAvailable.
func (p Profile) WithDefaults(ticker Ticker) Profile {
	if p.Name == "" {
		p.Name = ticker.String()
	}
	if p.Sector == "" {
		p.Sector = NotAvailable
	}
	if p.Country == "" {
		p.Country = NotAvailable
	}
	if p.Industry == "" {
		p.Industry = NotAvailable
	}
	return p
}

// RawFinancials is the per-ticker bundle returned by a financial data source.
// It is sourced once per ticker per run and must not be mutated.
type RawFinancials struct {
	Ticker          Ticker    `json:"ticker"`
	Profile         Profile   `json:"profile"`
	Summary         LineItems `json:"summary"`
	BalanceSheet    LineItems `json:"balance_sheet"`
	IncomeStatement LineItems `json:"income_statement"`
	CashFlow        LineItems `json:"cash_flow"`
}
