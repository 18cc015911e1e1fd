package models

// CapitalStructureInputs are the line items the WACC/ROIC calculation reads.
// Each field falls back independently when the provider omits it.
type CapitalStructureInputs struct {
	MarketCap        float64 `json:"market_cap"`
	Beta             float64 `json:"beta"`
	TotalDebt        float64 `json:"total_debt"`
	Cash             float64 `json:"cash"`
	CommonEquity     float64 `json:"common_equity"`
	InterestExpense  float64 `json:"interest_expense"`
	EBT              float64 `json:"ebt"`
	IncomeTaxExpense float64 `json:"income_tax_expense"`
	EBIT             float64 `json:"ebit"`
}

// WACCResult holds the cost of capital and return on invested capital.
type WACCResult struct {
	CostOfEquity    float64 `json:"cost_of_equity"`
	CostOfDebt      float64 `json:"cost_of_debt"`
	TaxRate         float64 `json:"tax_rate"`
	WACC            float64 `json:"wacc"`
	NOPAT           float64 `json:"nopat"`
	InvestedCapital float64 `json:"invested_capital"`
	ROIC            float64 `json:"roic"`
	Spread          float64 `json:"spread"` // ROIC - WACC
	// ROICUndefined is set when invested capital is zero and ROIC was
	// reported as 0 rather than computed.
	ROICUndefined bool `json:"roic_undefined,omitempty"`
}

// CreatesValue reports whether ROIC exceeds WACC.
func (r WACCResult) CreatesValue() bool {
	return r.Spread > 0
}

// RatioSet holds valuation, profitability, liquidity, leverage and margin
// ratios. A nil field means the ratio is not available.
type RatioSet struct {
	PE                   *float64 `json:"pe,omitempty"`
	PB                   *float64 `json:"pb,omitempty"`
	PFCF                 *float64 `json:"pfcf,omitempty"`
	DividendRate         *float64 `json:"dividend_rate,omitempty"`
	DividendYield        *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio          *float64 `json:"payout_ratio,omitempty"`
	ROA                  *float64 `json:"roa,omitempty"`
	ROE                  *float64 `json:"roe,omitempty"`
	CurrentRatio         *float64 `json:"current_ratio,omitempty"`
	QuickRatio           *float64 `json:"quick_ratio,omitempty"`
	LongTermDebtToEquity *float64 `json:"long_term_debt_to_equity,omitempty"`
	DebtToEquity         *float64 `json:"debt_to_equity,omitempty"`
	OperatingMargin      *float64 `json:"operating_margin,omitempty"`
	ProfitMargin         *float64 `json:"profit_margin,omitempty"`
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
